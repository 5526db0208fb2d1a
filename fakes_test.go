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
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

type fakeRelationship struct {
	source  *AccountRef
	targets []AccountRef
	node    NodeRef
	kind    RelationshipKind
	seconds int64
}

// fakeAccountStore resolves accounts in memory and records every
// relationship call.
type fakeAccountStore struct {
	mu              sync.Mutex
	failValues      map[string]bool
	relationshipErr error

	accounts      map[string]AccountRef
	created       []AccountRef
	relationships []fakeRelationship
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		failValues: map[string]bool{},
		accounts:   map[string]AccountRef{},
	}
}

func (s *fakeAccountStore) GetOrCreateAccount(accountType AccountType, value string, _ *SourceFile) (AccountRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failValues[value] {
		return AccountRef{}, errors.New("account store rejected " + value)
	}
	key := string(accountType) + "|" + value
	if ref, ok := s.accounts[key]; ok {
		return ref, nil
	}
	ref := AccountRef{ID: fmt.Sprintf("account--%d", len(s.accounts)+1), Type: accountType, Value: value}
	s.accounts[key] = ref
	s.created = append(s.created, ref)
	return ref, nil
}

func (s *fakeAccountStore) AddRelationship(source *AccountRef, targets []AccountRef, node NodeRef, kind RelationshipKind, seconds int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relationshipErr != nil {
		return s.relationshipErr
	}
	s.relationships = append(s.relationships, fakeRelationship{source, targets, node, kind, seconds})
	return nil
}

func (s *fakeAccountStore) createdOfType(accountType AccountType) []AccountRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	var refs []AccountRef
	for _, ref := range s.created {
		if ref.Type == accountType {
			refs = append(refs, ref)
		}
	}
	return refs
}

type fakeNode struct {
	ref    NodeRef
	kind   NodeKind
	source int64
	attrs  Attributes
}

// fakeEvidenceStore keeps nodes and derived files in memory.
type fakeEvidenceStore struct {
	mu               sync.Mutex
	createErr        error
	existsErr        error
	indexErr         error
	derivedFailNames map[string]bool

	nodes   []fakeNode
	derived []DerivedFile
	indexed []NodeRef
}

func newFakeEvidenceStore() *fakeEvidenceStore {
	return &fakeEvidenceStore{derivedFailNames: map[string]bool{}}
}

func (s *fakeEvidenceStore) CreateNode(kind NodeKind, source *SourceFile, attributes Attributes) (NodeRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	ref := NodeRef(fmt.Sprintf("%s--%d", kind, len(s.nodes)+1))
	s.nodes = append(s.nodes, fakeNode{ref: ref, kind: kind, source: source.ID, attrs: attributes})
	return ref, nil
}

func (s *fakeEvidenceStore) NodeExists(kind NodeKind, source *SourceFile, attributes Attributes) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	want, err := json.Marshal(attributes)
	if err != nil {
		return false, err
	}
	for _, node := range s.nodes {
		if node.kind != kind || node.source != source.ID {
			continue
		}
		got, err := json.Marshal(node.attrs)
		if err != nil {
			return false, err
		}
		if string(got) == string(want) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeEvidenceStore) AddDerivedFile(derived DerivedFile) (DerivedFileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.derivedFailNames[derived.Name] {
		return DerivedFileRef{}, errors.New("registration rejected for " + derived.Name)
	}
	s.derived = append(s.derived, derived)
	ref := DerivedFileRef{
		ID:   fmt.Sprintf("derived-file--%d", len(s.derived)),
		Name: derived.Name,
		Path: derived.Path,
		Size: derived.Size,
	}
	return ref, nil
}

func (s *fakeEvidenceStore) Index(node NodeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexErr != nil {
		return s.indexErr
	}
	s.indexed = append(s.indexed, node)
	return nil
}

func (s *fakeEvidenceStore) nodesOfKind(kind NodeKind) []fakeNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []fakeNode
	for _, node := range s.nodes {
		if node.kind == kind {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// fakeQueue records announcements and enqueued batches.
type fakeQueue struct {
	mu         sync.Mutex
	enqueueErr error

	announced []DerivedFileRef
	batches   [][]DerivedFileRef
}

func (q *fakeQueue) Announce(derived DerivedFileRef) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.announced = append(q.announced, derived)
}

func (q *fakeQueue) Enqueue(derived []DerivedFileRef) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.batches = append(q.batches, derived)
	return nil
}

// fakeDisk reports a fixed free space.
type fakeDisk struct {
	free  uint64
	known bool
}

func (d fakeDisk) FreeSpace() (uint64, bool) {
	return d.free, d.known
}

// fakeNotifier records user visible notifications.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Error(subject, details string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, subject+" "+details)
}

func (n *fakeNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.messages...)
}

// fakeParser returns a fixed result and records its invocation.
type fakeParser struct {
	result *ParseResult

	calls      int
	lastPath   string
	lastSource *SourceFile
}

func (p *fakeParser) Parse(stagedPath string, source *SourceFile) *ParseResult {
	p.calls++
	p.lastPath = stagedPath
	p.lastSource = source
	if p.result == nil {
		return &ParseResult{Status: ParseOK}
	}
	return p.result
}
