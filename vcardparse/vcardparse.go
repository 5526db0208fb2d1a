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

// Package vcardparse extracts contact records from vCard files.
package vcardparse

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/spf13/afero"

	"github.com/forensicanalysis/emailparser"
)

// Parser reads every card of a vCard file, not only the first one.
type Parser struct {
	fs     afero.Fs
	logger *log.Logger
}

// New creates a vCard Parser reading staged files from fs.
func New(fs afero.Fs, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Parser{fs: fs, logger: logger}
}

// Parse implements the parser contract for vCard containers.
func (p *Parser) Parse(stagedPath string, source *emailparser.SourceFile) *emailparser.ParseResult {
	f, err := p.fs.Open(stagedPath)
	if err != nil {
		p.logger.Printf("failed to open staged vcard %s: %v", stagedPath, err)
		return &emailparser.ParseResult{
			Status: emailparser.ParseFailed,
			Errors: fmt.Sprintf("Failed to open the staged copy of %s.", source.Name),
		}
	}
	defer f.Close()

	result := &emailparser.ParseResult{Status: emailparser.ParseOK}
	failed := 0
	dec := vcard.NewDecoder(f)
	for i := 0; ; i++ {
		card, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			// The decoder cannot resynchronize on the next card.
			p.logger.Printf("failed to decode card %d of %s: %v", i, source.Name, err)
			failed++
			break
		}
		result.Contacts = append(result.Contacts, convertCard(card))
	}

	if failed > 0 {
		if len(result.Contacts) == 0 {
			result.Status = emailparser.ParseFailed
		}
		result.Errors = fmt.Sprintf("Failed to extract %d contacts from %s.", failed, source.Name)
	}
	return result
}

func convertCard(card vcard.Card) *emailparser.Contact {
	contact := &emailparser.Contact{
		Name: card.PreferredValue(vcard.FieldFormattedName),
	}
	for _, field := range card[vcard.FieldTelephone] {
		contact.Phones = append(contact.Phones, contactValue(field))
	}
	for _, field := range card[vcard.FieldEmail] {
		contact.Emails = append(contact.Emails, contactValue(field))
	}
	contact.URLs = card.Values(vcard.FieldURL)
	for _, field := range card[vcard.FieldOrganization] {
		// The ORG value may carry organizational unit components after
		// the organization name.
		contact.Organizations = append(contact.Organizations, strings.SplitN(field.Value, ";", 2)[0])
	}
	return contact
}

func contactValue(field *vcard.Field) emailparser.ContactValue {
	value := emailparser.ContactValue{Value: field.Value}
	for _, param := range field.Params[vcard.ParamType] {
		for _, name := range strings.Split(param, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			value.Types = append(value.Types, strings.ToLower(name))
		}
	}
	return value
}
