// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package emailparser

// SourceKind describes the allocation state of a source file.
type SourceKind int

// Kinds of source files. Only regular files are processed.
const (
	SourceRegular SourceKind = iota
	SourceDirectory
	SourceSlack
	SourceUnallocated
)

// SourceFile describes the file one pipeline invocation operates on, as
// handed over by the host processing framework. All timestamps are
// epoch seconds.
type SourceFile struct {
	ID       int64
	Name     string
	Path     string // parent path inside the source image
	Size     int64
	DeviceID string // identifier of the originating data source
	Crtime   int64
	Known    bool // hash set match, such files are skipped
	Kind     SourceKind
}

// Message is one e-mail message normalized by a parser adapter. Address
// fields carry the raw header text, address extraction happens later.
// Timestamps are epoch seconds, zero means unknown.
type Message struct {
	ID          int64 // numeric descriptor id, -1 if the format has none
	Sender      string
	To          string
	Cc          string
	Bcc         string
	Subject     string
	Headers     string
	SentUnix    int64
	BodyPlain   string
	BodyHTML    string
	BodyRTF     string
	LocalPath   string // folder path inside the mail profile
	Attachments []Attachment
}

// NewMessage returns a message without a descriptor id.
func NewMessage() *Message {
	return &Message{ID: -1}
}

// HasAttachments reports whether any attachments were extracted for the
// message.
func (m *Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}

// EncodingType names the storage encoding of extracted content.
type EncodingType string

// EncodingNone marks content stored without transformation.
const EncodingNone EncodingType = "none"

// Attachment is one message attachment extracted to local storage.
// Timestamps are epoch seconds, zero means unknown.
type Attachment struct {
	Name     string
	Path     string // location of the extracted content
	Size     int64
	Crtime   int64
	Mtime    int64
	Atime    int64
	Ctime    int64
	Encoding EncodingType
}

// ContactValue is one typed vCard property value, for example a phone
// number with its TYPE parameters.
type ContactValue struct {
	Value string
	Types []string // lower case type parameters, empty for untyped
}

// Contact is one address book entry normalized by a parser adapter.
type Contact struct {
	Name          string
	Phones        []ContactValue
	Emails        []ContactValue
	URLs          []string
	Organizations []string // first component of each ORG property
}

// DerivedFile describes content extracted from a container that is
// registered as its own piece of evidence. Timestamps are epoch
// seconds.
type DerivedFile struct {
	Name     string
	Path     string
	Size     int64
	Ctime    int64
	Crtime   int64
	Atime    int64
	Mtime    int64
	Encoding EncodingType
	Parent   NodeRef // evidence node the content was extracted from
	SourceID int64   // id of the container source file
}

// DerivedFileRef is the registered form of a DerivedFile, suitable for
// requeueing.
type DerivedFileRef struct {
	ID   string
	Name string
	Path string
	Size int64
}
