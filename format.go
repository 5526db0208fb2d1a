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

import "bytes"

// ContainerFormat classifies the byte layout of a container file.
type ContainerFormat int

// Container formats detected by DetectFormat.
const (
	FormatUnknown ContainerFormat = iota
	FormatMbox
	FormatPst
	FormatVcard
)

func (f ContainerFormat) String() string {
	switch f {
	case FormatMbox:
		return "mbox"
	case FormatPst:
		return "pst"
	case FormatVcard:
		return "vcard"
	}
	return "unknown"
}

// SniffLen is the number of leading bytes DetectFormat needs at most.
const SniffLen = 64

var (
	mboxSignature  = []byte("From ")
	pstSignature   = []byte{0x21, 0x42, 0x44, 0x4e} // "!BDN"
	vcardSignature = []byte("BEGIN:VCARD")
)

// DetectFormat classifies a file from its leading bytes. The checks run
// in a fixed order, mbox before pst before vcard, and the first match
// wins. The mbox check additionally requires the file to be larger than
// SniffLen bytes, so tiny files are never classified as mbox. Files
// matching no signature are FormatUnknown.
func DetectFormat(prefix []byte, size int64) ContainerFormat {
	switch {
	case size > SniffLen && bytes.HasPrefix(prefix, mboxSignature):
		return FormatMbox
	case bytes.HasPrefix(prefix, pstSignature):
		return FormatPst
	case len(prefix) >= len(vcardSignature) && bytes.EqualFold(prefix[:len(vcardSignature)], vcardSignature):
		return FormatVcard
	}
	return FormatUnknown
}
