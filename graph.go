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

import (
	"log"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// notAvailable is stored as message id when the container format
// carries no usable id.
const notAvailable = "Not Available"

// defaultLocalPath marks messages whose container carries no folder
// path.
const defaultLocalPath = "/foo/bar"

// phoneTypeAttrs maps lower case vCard TEL types to their attribute
// key. Unlisted types and the types pref, voice and main-number fall
// back to the generic AttrPhone.
var phoneTypeAttrs = map[string]string{
	"home":      AttrPhoneHome,
	"work":      AttrPhoneOffice,
	"text":      AttrPhoneText,
	"fax":       AttrPhoneFax,
	"cell":      AttrPhoneMobile,
	"video":     AttrPhoneVideo,
	"pager":     AttrPhonePager,
	"textphone": AttrPhoneTextphone,
	"msg":       AttrPhoneVoiceMessaging,
	"bbs":       AttrPhoneBBS,
	"modem":     AttrPhoneModem,
	"car":       AttrPhoneCar,
	"isdn":      AttrPhoneISDN,
	"pcs":       AttrPhonePCS,
}

// emailTypeAttrs maps lower case vCard EMAIL types to their attribute
// key. Unlisted types and the type internet fall back to the generic
// AttrEmail.
var emailTypeAttrs = map[string]string{
	"home": AttrEmailHome,
	"work": AttrEmailOffice,
	"x400": AttrEmailX400,
}

// GraphBuilder turns normalized messages and contacts into evidence
// nodes, account nodes and relationship edges. Failures local to one
// address, one edge or one index registration are logged and do not
// fail the operation.
type GraphBuilder struct {
	accounts AccountStore
	evidence EvidenceStore
	notifier Notifier
	logger   *log.Logger
}

// NewGraphBuilder creates a GraphBuilder on the given stores.
func NewGraphBuilder(accounts AccountStore, evidence EvidenceStore, notifier Notifier, logger *log.Logger) *GraphBuilder {
	return &GraphBuilder{accounts: accounts, evidence: evidence, notifier: notifier, logger: logger}
}

// AddMessage persists one message as an evidence node, resolves the
// sender and recipient accounts and links them with a message
// relationship. The sender account is only resolved when exactly one
// address can be extracted from the sender text. Only node persistence
// errors are returned, everything else degrades to log entries.
func (b *GraphBuilder) AddMessage(msg *Message, source *SourceFile) (NodeRef, error) {
	var sender *AccountRef
	if senderAddresses := ExtractAddresses(msg.Sender); len(senderAddresses) == 1 {
		account, err := b.accounts.GetOrCreateAccount(AccountTypeEmail, senderAddresses[0], source)
		if err != nil {
			logf(b.logger, "failed to create account for email address %s: %v", senderAddresses[0], err)
		} else {
			sender = &account
		}
	} else {
		logf(b.logger, "failed to find sender address, from = %s", msg.Sender)
	}

	// Recipients are the union of to, cc and bcc in that order,
	// collapsed by address.
	var recipients []AccountRef
	seen := map[string]bool{}
	for _, text := range []string{msg.To, msg.Cc, msg.Bcc} {
		for _, address := range ExtractAddresses(text) {
			if seen[address] {
				continue
			}
			seen[address] = true
			account, err := b.accounts.GetOrCreateAccount(AccountTypeEmail, address, source)
			if err != nil {
				logf(b.logger, "failed to create account for email address %s: %v", address, err)
				continue
			}
			recipients = append(recipients, account)
		}
	}

	attrs := Attributes{}
	attrs.AddString(AttrHeaders, msg.Headers)
	attrs.AddString(AttrFrom, msg.Sender)
	attrs.AddString(AttrTo, msg.To)
	attrs.AddString(AttrSubject, msg.Subject)
	// The container format carries a single date, it is recorded as
	// sent and received time.
	attrs.AddTime(AttrReceivedTime, msg.SentUnix)
	attrs.AddTime(AttrSentTime, msg.SentUnix)
	attrs.AddString(AttrBodyPlain, msg.BodyPlain)
	if msg.ID < 0 {
		attrs.AddString(AttrMessageID, notAvailable)
	} else {
		attrs.AddString(AttrMessageID, strconv.FormatInt(msg.ID, 10))
	}
	if msg.LocalPath != "" {
		attrs.AddString(AttrPath, msg.LocalPath)
	} else {
		attrs.AddString(AttrPath, defaultLocalPath)
	}
	attrs.AddString(AttrCc, msg.Cc)
	attrs.AddString(AttrBodyHTML, msg.BodyHTML)
	attrs.AddString(AttrBodyRTF, msg.BodyRTF)

	node, err := b.evidence.CreateNode(KindEmailMessage, source, attrs)
	if err != nil {
		logf(b.logger, "failed to create message node for %s (id=%d): %v", source.Name, source.ID, err)
		return "", errors.Wrap(err, "could not create message node")
	}

	if err := b.accounts.AddRelationship(sender, recipients, node, RelationshipMessage, msg.SentUnix); err != nil {
		logf(b.logger, "failed to create message relationships for %s (id=%d): %v", source.Name, source.ID, err)
	}

	b.index(node, "email message")
	return node, nil
}

// AddContact persists one contact as an evidence node unless an
// attribute-identical contact node already exists for the same source
// file, in which case nothing is created and the returned NodeRef is
// empty. The device account of the source file links to all resolved
// phone and e-mail accounts.
func (b *GraphBuilder) AddContact(contact *Contact, source *SourceFile) (NodeRef, error) {
	attrs := Attributes{}
	var accounts []AccountRef

	attrs.AddString(AttrName, contact.Name)

	for _, phone := range contact.Phones {
		if phone.Value == "" {
			continue
		}
		if len(phone.Types) == 0 {
			attrs.AddString(AttrPhone, phone.Value)
		} else {
			for _, phoneType := range phone.Types {
				key, ok := phoneTypeAttrs[strings.ToLower(phoneType)]
				if !ok {
					key = AttrPhone
				}
				attrs.AddString(key, phone.Value)
			}
		}

		account, err := b.accounts.GetOrCreateAccount(AccountTypePhone, phone.Value, source)
		if err != nil {
			logf(b.logger, "failed to create account for phone number '%s' (content='%s'; id=%d): %v",
				phone.Value, source.Name, source.ID, err)
			continue
		}
		accounts = append(accounts, account)
	}

	for _, email := range contact.Emails {
		if email.Value == "" {
			continue
		}
		if len(email.Types) == 0 {
			attrs.AddString(AttrEmail, email.Value)
		} else {
			for _, emailType := range email.Types {
				key, ok := emailTypeAttrs[strings.ToLower(emailType)]
				if !ok {
					key = AttrEmail
				}
				attrs.AddString(key, email.Value)
			}
		}

		account, err := b.accounts.GetOrCreateAccount(AccountTypeEmail, email.Value, source)
		if err != nil {
			logf(b.logger, "failed to create account for e-mail address '%s' (content='%s'; id=%d): %v",
				email.Value, source.Name, source.ID, err)
			continue
		}
		accounts = append(accounts, account)
	}

	for _, url := range contact.URLs {
		attrs.AddString(AttrURL, url)
	}

	for _, organization := range contact.Organizations {
		attrs.AddString(AttrOrganization, organization)
	}

	var device *AccountRef
	if source.DeviceID == "" {
		logf(b.logger, "missing device id for '%s' (id=%d)", source.Name, source.ID)
	} else {
		account, err := b.accounts.GetOrCreateAccount(AccountTypeDevice, source.DeviceID, source)
		if err != nil {
			logf(b.logger, "failed to create device account for '%s' (content='%s'; id=%d): %v",
				source.DeviceID, source.Name, source.ID, err)
		} else {
			device = &account
		}
	}

	exists, err := b.evidence.NodeExists(KindContact, source, attrs)
	if err != nil {
		logf(b.logger, "failed to check for existing contact from '%s' (id=%d): %v", source.Name, source.ID, err)
		return "", errors.Wrap(err, "could not check for existing contact")
	}
	if exists {
		return "", nil
	}

	node, err := b.evidence.CreateNode(KindContact, source, attrs)
	if err != nil {
		logf(b.logger, "failed to create contact node for '%s' (id=%d): %v", source.Name, source.ID, err)
		return "", errors.Wrap(err, "could not create contact node")
	}

	if device != nil {
		if err := b.accounts.AddRelationship(device, accounts, node, RelationshipContact, source.Crtime); err != nil {
			logf(b.logger, "failed to create contact relationships (fileName='%s'; fileId=%d): %v",
				source.Name, source.ID, err)
		}
	}

	b.index(node, "contact")
	return node, nil
}

// index registers a node with the search index. Index failures leave
// the node untouched and surface as a log entry plus one user
// notification.
func (b *GraphBuilder) index(node NodeRef, label string) {
	if err := b.evidence.Index(node); err != nil {
		logf(b.logger, "unable to index %s node %s: %v", label, node, err)
		notifyError(b.notifier, "Failed to index "+label+" for keyword search.", string(node))
	}
}
