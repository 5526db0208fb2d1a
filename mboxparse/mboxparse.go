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

// Package mboxparse extracts e-mail messages from Thunderbird mbox
// archives.
package mboxparse

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/spf13/afero"
	"golang.org/x/net/html/charset"

	"github.com/forensicanalysis/emailparser"
)

func init() {
	// Decode non UTF-8 message bodies instead of failing on them.
	message.CharsetReader = charset.NewReaderLabel
}

// Parser reads every message of an mbox container. Attachment content
// goes to the attachment store, broken messages are counted and
// reported in the aggregated error summary.
type Parser struct {
	fs          afero.Fs
	attachments *emailparser.AttachmentStore
	logger      *log.Logger
}

// New creates an mbox Parser reading staged files from fs.
func New(fs afero.Fs, attachments *emailparser.AttachmentStore, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Parser{fs: fs, attachments: attachments, logger: logger}
}

// Parse implements the parser contract for mbox containers.
func (p *Parser) Parse(stagedPath string, source *emailparser.SourceFile) *emailparser.ParseResult {
	f, err := p.fs.Open(stagedPath)
	if err != nil {
		p.logger.Printf("failed to open staged mbox %s: %v", stagedPath, err)
		return &emailparser.ParseResult{
			Status: emailparser.ParseFailed,
			Errors: fmt.Sprintf("Failed to open the staged copy of %s.", source.Name),
		}
	}
	defer f.Close()

	folder := emailFolder(source.Path, source.Name)

	result := &emailparser.ParseResult{Status: emailparser.ParseOK}
	failed := 0
	reader := mbox.NewReader(f)
	for i := 0; ; i++ {
		msgReader, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The separator scan is off, the remaining file cannot be
			// trusted.
			p.logger.Printf("failed to read message %d of %s: %v", i, source.Name, err)
			failed++
			break
		}

		msg, err := p.readMessage(msgReader, folder)
		if err != nil {
			p.logger.Printf("failed to extract message %d of %s: %v", i, source.Name, err)
			failed++
			continue
		}
		result.Messages = append(result.Messages, msg)
	}

	if failed > 0 {
		result.Errors = fmt.Sprintf("Failed to extract %d messages from %s.", failed, source.Name)
	}
	return result
}

func (p *Parser) readMessage(r io.Reader, folder string) (*emailparser.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	msg := emailparser.NewMessage()
	msg.LocalPath = folder
	msg.Headers = headerText(mr.Header)
	msg.Sender = headerValue(mr.Header, "From")
	msg.To = headerValue(mr.Header, "To")
	msg.Cc = headerValue(mr.Header, "Cc")
	msg.Bcc = headerValue(mr.Header, "Bcc")
	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = mr.Header.Get("Subject")
	}
	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		msg.SentUnix = date.Unix()
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken part ends the walk, the fields read so far are
			// kept.
			p.logger.Printf("failed to read message part: %v", err)
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := ioutil.ReadAll(part.Body)
			if err != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain") && msg.BodyPlain == "":
				msg.BodyPlain = string(body)
			case strings.HasPrefix(contentType, "text/html") && msg.BodyHTML == "":
				msg.BodyHTML = string(body)
			case (strings.HasPrefix(contentType, "text/rtf") ||
				strings.HasPrefix(contentType, "application/rtf")) && msg.BodyRTF == "":
				msg.BodyRTF = string(body)
			}
		case *mail.AttachmentHeader:
			attachment, err := p.storeAttachment(h, part.Body)
			if err != nil {
				p.logger.Printf("failed to store attachment: %v", err)
				continue
			}
			msg.Attachments = append(msg.Attachments, attachment)
		}
	}
	return msg, nil
}

func (p *Parser) storeAttachment(h *mail.AttachmentHeader, body io.Reader) (emailparser.Attachment, error) {
	name, err := h.Filename()
	if err != nil || name == "" {
		name = "attachment"
	}

	storePath, f, err := p.attachments.StoreFile(name)
	if err != nil {
		return emailparser.Attachment{}, err
	}
	size, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return emailparser.Attachment{}, err
	}

	return emailparser.Attachment{
		Name:     filepath.Base(storePath),
		Path:     storePath,
		Size:     size,
		Encoding: emailparser.EncodingNone,
	}, nil
}

func headerValue(h mail.Header, key string) string {
	if text, err := h.Text(key); err == nil {
		return text
	}
	return h.Get(key)
}

func headerText(h mail.Header) string {
	var b strings.Builder
	fields := h.Fields()
	for fields.Next() {
		b.WriteString(fields.Key())
		b.WriteString(": ")
		b.WriteString(fields.Value())
		b.WriteString("\r\n")
	}
	return b.String()
}

// emailFolder derives the profile relative mail folder of a container.
// Thunderbird keeps local folders below Mail and IMAP folders below
// ImapMail, subfolder directories carry an .sbd suffix.
func emailFolder(parentPath, name string) string {
	folder := ""
	if idx := strings.Index(parentPath, "/Mail/"); idx >= 0 {
		folder = parentPath[idx+5:]
	} else if idx := strings.Index(parentPath, "/ImapMail/"); idx >= 0 {
		folder = parentPath[idx+9:]
	}
	folder += name
	return strings.ReplaceAll(folder, ".sbd", "")
}
