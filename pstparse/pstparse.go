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

// Package pstparse extracts e-mail messages from Outlook PST and OST
// containers.
package pstparse

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	pst "github.com/mooijtech/go-pst/v6/pkg"
	"github.com/mooijtech/go-pst/v6/pkg/properties"
	"github.com/spf13/afero"

	"github.com/forensicanalysis/emailparser"
)

// Parser walks all folders of a PST file and converts their messages.
type Parser struct {
	fs          afero.Fs
	attachments *emailparser.AttachmentStore
	logger      *log.Logger
}

// New creates a PST Parser reading staged files from fs and persisting
// attachments into attachments.
func New(fs afero.Fs, attachments *emailparser.AttachmentStore, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Parser{fs: fs, attachments: attachments, logger: logger}
}

// Parse implements the parser contract for PST and OST containers.
func (p *Parser) Parse(stagedPath string, source *emailparser.SourceFile) *emailparser.ParseResult {
	f, err := p.fs.Open(stagedPath)
	if err != nil {
		p.logger.Printf("failed to open staged pst %s: %v", stagedPath, err)
		return &emailparser.ParseResult{
			Status: emailparser.ParseFailed,
			Errors: fmt.Sprintf("Failed to open the staged copy of %s.", source.Name),
		}
	}
	defer f.Close()

	pstFile, err := pst.New(f)
	if err != nil {
		return p.failure(source, err)
	}
	defer func() {
		pstFile.Cleanup()
	}()

	result := &emailparser.ParseResult{Status: emailparser.ParseOK}
	failed := 0
	err = pstFile.WalkFolders(func(folder *pst.Folder) error {
		messageIterator, err := folder.GetMessageIterator()
		if errors.Is(err, pst.ErrMessagesNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for messageIterator.Next() {
			message := messageIterator.Value()
			msg, err := p.convertMessage(message, folder.Name)
			if err != nil {
				failed++
				p.logger.Printf("failed to extract message %d of %s: %v", message.Identifier, source.Name, err)
				continue
			}
			result.Messages = append(result.Messages, msg)
		}
		return messageIterator.Err()
	})
	if err != nil {
		if len(result.Messages) == 0 {
			return p.failure(source, err)
		}
		p.logger.Printf("failed to walk all folders of %s: %v", source.Name, err)
		failed++
	}

	if failed > 0 {
		result.Errors = fmt.Sprintf("Failed to extract %d messages from %s.", failed, source.Name)
	}
	return result
}

// failure classifies a file level parse error. Encrypted and password
// protected containers are reported separately so the examiner can
// follow up on them.
func (p *Parser) failure(source *emailparser.SourceFile, err error) *emailparser.ParseResult {
	p.logger.Printf("failed to parse %s: %v", source.Name, err)
	if strings.Contains(strings.ToLower(err.Error()), "encrypt") {
		return &emailparser.ParseResult{
			Status: emailparser.ParseEncrypted,
			Errors: fmt.Sprintf("Failed to parse %s, the file is encrypted.", source.Name),
		}
	}
	return &emailparser.ParseResult{
		Status: emailparser.ParseFailed,
		Errors: fmt.Sprintf("Failed to parse %s.", source.Name),
	}
}

func (p *Parser) convertMessage(message *pst.Message, folder string) (*emailparser.Message, error) {
	props, ok := message.Properties.(*properties.Message)
	if !ok || props == nil {
		return nil, errors.New("message carries no email properties")
	}

	msg := emailparser.NewMessage()
	msg.ID = int64(message.Identifier)
	msg.LocalPath = folder
	msg.Sender = props.GetSenderEmailAddress()
	msg.To = props.GetDisplayTo()
	msg.Cc = props.GetDisplayCc()
	msg.Bcc = props.GetDisplayBcc()
	msg.Subject = props.GetSubject()
	msg.Headers = props.GetTransportMessageHeaders()
	msg.BodyPlain = props.GetBody()
	if nanos := props.GetMessageDeliveryTime(); nanos > 0 {
		msg.SentUnix = time.Unix(0, nanos).Unix()
	}

	attachmentIterator, err := message.GetAttachmentIterator()
	if errors.Is(err, pst.ErrAttachmentsNotFound) {
		return msg, nil
	}
	if err != nil {
		return nil, err
	}
	for attachmentIterator.Next() {
		attachment := attachmentIterator.Value()
		a, err := p.storeAttachment(attachment)
		if err != nil {
			p.logger.Printf("failed to store attachment of message %d: %v", message.Identifier, err)
			continue
		}
		msg.Attachments = append(msg.Attachments, a)
	}
	if err := attachmentIterator.Err(); err != nil {
		// The message itself was converted, keep it.
		p.logger.Printf("failed to list all attachments of message %d: %v", message.Identifier, err)
	}
	return msg, nil
}

func (p *Parser) storeAttachment(attachment *pst.Attachment) (emailparser.Attachment, error) {
	name := attachment.GetAttachLongFilename()
	if name == "" {
		name = "attachment"
	}

	storePath, f, err := p.attachments.StoreFile(name)
	if err != nil {
		return emailparser.Attachment{}, err
	}
	size, err := attachment.WriteTo(f)
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
