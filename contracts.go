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

// NodeKind is the type discriminator of an evidence node.
type NodeKind string

// Kinds of evidence nodes created by this package.
const (
	KindEmailMessage       NodeKind = "email-message"
	KindContact            NodeKind = "contact"
	KindEncryptionDetected NodeKind = "encryption-detected"
	KindDerivedFile        NodeKind = "derived-file"
)

// NodeRef is the opaque handle of a persisted evidence node.
type NodeRef string

// AccountType is the identity class of an account node.
type AccountType string

// Account types resolved by the graph builder.
const (
	AccountTypeEmail  AccountType = "email"
	AccountTypePhone  AccountType = "phone"
	AccountTypeDevice AccountType = "device"
)

// AccountRef is the handle of a resolved account node.
type AccountRef struct {
	ID    string
	Type  AccountType
	Value string
}

// RelationshipKind types the edge between accounts.
type RelationshipKind string

// Kinds of relationships between accounts.
const (
	RelationshipMessage RelationshipKind = "message"
	RelationshipContact RelationshipKind = "contact"
)

// ParseStatus classifies the outcome of one container parse.
type ParseStatus int

// Parse outcomes. ParseEncrypted is a classification, not a failure: it
// makes the pipeline record an encryption detection instead of message
// nodes.
const (
	ParseOK ParseStatus = iota
	ParseEncrypted
	ParseFailed
)

// ParseResult carries the normalized records of one parsed container
// together with an aggregated, user readable error summary for records
// that could not be processed.
type ParseResult struct {
	Status   ParseStatus
	Messages []*Message
	Contacts []*Contact
	Errors   string
}

// Parser is the uniform contract of the format specific adapters. Parse
// reads the staged copy of source and never panics on malformed input.
type Parser interface {
	Parse(stagedPath string, source *SourceFile) *ParseResult
}

// AccountStore resolves account nodes and connects them. Both methods
// are implemented by the case database.
type AccountStore interface {
	// GetOrCreateAccount resolves the account node for a normalized
	// value, creating it if needed. The operation is idempotent,
	// concurrent calls for the same value converge to one node.
	GetOrCreateAccount(accountType AccountType, value string, source *SourceFile) (AccountRef, error)
	// AddRelationship links source to every target account, attributed
	// to the given evidence node. A nil source adds no edges. The
	// timestamp is epoch seconds.
	AddRelationship(source *AccountRef, targets []AccountRef, node NodeRef, kind RelationshipKind, seconds int64) error
}

// EvidenceStore persists evidence nodes and derived files.
type EvidenceStore interface {
	// CreateNode persists one node with its complete attribute set and
	// returns its handle.
	CreateNode(kind NodeKind, source *SourceFile, attributes Attributes) (NodeRef, error)
	// NodeExists reports whether a node of the given kind with an
	// identical attribute set exists for the same source file.
	NodeExists(kind NodeKind, source *SourceFile, attributes Attributes) (bool, error)
	// AddDerivedFile registers extracted content as its own evidence.
	AddDerivedFile(derived DerivedFile) (DerivedFileRef, error)
	// Index registers a node with the search index. Nodes stay valid
	// when indexing fails.
	Index(node NodeRef) error
}

// JobQueue hands derived files back to the host processing framework.
type JobQueue interface {
	// Announce publishes a derived file as newly available content.
	Announce(derived DerivedFileRef)
	// Enqueue submits a batch of derived files for processing.
	Enqueue(derived []DerivedFileRef) error
}

// DiskMonitor reports the free space of the staging volume. The second
// return is false when the free space is unknown, which staging treats
// as sufficient.
type DiskMonitor interface {
	FreeSpace() (uint64, bool)
}

// Notifier is the user visible notification channel, separate from the
// log stream.
type Notifier interface {
	Error(subject, details string)
}
