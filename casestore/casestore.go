/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package casestore persists extracted communication evidence in a
// single sqlite case database. It implements the account store and
// evidence store contracts of the emailparser package and serves as a
// single source of truth for one examination: evidence nodes, resolved
// accounts, their relationships and the keyword search index all live
// in the same file.
package casestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"crawshaw.io/sqlite"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/forensicanalysis/emailparser"
)

const caseStoreVersion = 1
const caseStoreApplicationID = 1835100524
const discriminator = "type"

// JSONElement is a single element row of the case database.
type JSONElement []byte

// Account is one resolved account row.
type Account struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Value    string `json:"value"`
	SourceID int64  `json:"source_id"`
}

// Relationship is one edge between two accounts, attributed to the
// evidence node it was observed on.
type Relationship struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	NodeID   string `json:"node_id"`
	Kind     string `json:"kind"`
	Seconds  int64  `json:"relationship_time"`
}

// The CaseStore is a central storage for communication evidence in
// digital forensic investigations. Extracted messages, contacts,
// derived files, the accounts resolved from them and the relationships
// between those accounts are stored in a single sqlite database.
// Extracted file content is kept outside the case database and only
// referenced from it.
type CaseStore struct {
	cursor *sqlite.Conn
	mutex  sync.Mutex

	// Attribute columns seen per element kind, guarded by mutex. The
	// columns become the per kind views when the store is closed.
	kinds        map[string]map[string]bool
	kindsChanged bool
}

var ErrStoreExists = fmt.Errorf("store already exists")
var ErrStoreNotExists = fmt.Errorf("store does not exist")

// New creates a new case database.
func New(url string) (*CaseStore, error) {
	return open(url, true)
}

// Open opens an existing case database.
func Open(url string) (*CaseStore, error) {
	return open(url, false)
}

func open(url string, create bool) (*CaseStore, error) { // nolint:gocyclo,funlen
	if err := registerSchemas(); err != nil {
		return nil, err
	}

	if url != ":memory:" {
		url = strings.TrimRight(url, "/")

		exists := true
		_, err := os.Stat(url)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			exists = false
		}

		if create && exists {
			return nil, ErrStoreExists
		}
		if !create && !exists {
			return nil, ErrStoreNotExists
		}

		if create {
			err = os.MkdirAll(path.Dir(url), 0750)
			if err != nil {
				return nil, err
			}

			_, err := os.Create(url)
			if err != nil {
				return nil, err
			}
		}
	}

	store := &CaseStore{kinds: map[string]map[string]bool{}}

	var err error
	store.cursor, err = sqlite.OpenConn(url, 0)
	if err != nil {
		return nil, err
	}

	if create {
		err = setPragma(store.cursor, "application_id", caseStoreApplicationID)
		if err != nil {
			return nil, err
		}

		err = setPragma(store.cursor, "user_version", caseStoreVersion)
		if err != nil {
			return nil, err
		}

		for _, query := range []string{
			"CREATE TABLE `elements` (id TEXT PRIMARY KEY, kind TEXT NOT NULL, " +
				"source_id INTEGER NOT NULL, json TEXT NOT NULL, insert_time TEXT NOT NULL)",
			"CREATE INDEX `elements_kind_source` ON `elements` (kind, source_id)",
			"CREATE TABLE `accounts` (id TEXT NOT NULL, account_type TEXT NOT NULL, " +
				"value TEXT NOT NULL, source_id INTEGER NOT NULL, " +
				"UNIQUE (account_type, value, source_id))",
			"CREATE TABLE `relationships` (id TEXT PRIMARY KEY, source_account TEXT NOT NULL, " +
				"target_account TEXT NOT NULL, node_id TEXT NOT NULL, kind TEXT NOT NULL, " +
				"relationship_time INTEGER)",
			"CREATE VIRTUAL TABLE `search_index` " +
				"USING fts5(id UNINDEXED, json, tokenize=\"unicode61 tokenchars '@/.'\")",
		} {
			if err := store.exec(query); err != nil {
				return nil, err
			}
		}
	} else {
		applicationID, err := pragma(store.cursor, "application_id")
		if err != nil {
			return nil, err
		}
		if applicationID != caseStoreApplicationID {
			msg := "wrong file format (application_id is %d, requires %d)"
			return nil, fmt.Errorf(msg, applicationID, caseStoreApplicationID)
		}

		version, err := pragma(store.cursor, "user_version")
		if err != nil {
			return nil, err
		}
		if version != caseStoreVersion {
			msg := "wrong file format (user_version is %d, requires %d)"
			return nil, fmt.Errorf(msg, version, caseStoreVersion)
		}
	}

	err = store.setupKinds()
	if err != nil {
		return nil, err
	}

	return store, nil
}

func pragma(conn *sqlite.Conn, name string) (int64, error) {
	stmt, err := conn.Prepare("PRAGMA " + name)
	if err != nil {
		return 0, err
	}
	_, err = stmt.Step()
	if err != nil {
		return 0, err
	}
	i := stmt.GetInt64(name)
	return i, stmt.Finalize()
}

func setPragma(conn *sqlite.Conn, name string, i int64) error {
	stmt, err := conn.Prepare("PRAGMA " + name + " = " + fmt.Sprint(i))
	if err != nil {
		return err
	}
	_, err = stmt.Step()
	if err != nil {
		return err
	}
	return stmt.Finalize()
}

/* ################################
#   Account store
################################ */

// GetOrCreateAccount resolves the account row for a value, creating it
// if needed. Repeated calls for the same type, value and source return
// the same account.
func (store *CaseStore) GetOrCreateAccount(accountType emailparser.AccountType, value string,
	source *emailparser.SourceFile) (emailparser.AccountRef, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	ref := emailparser.AccountRef{Type: accountType, Value: value}

	stmt, err := store.cursor.Prepare("INSERT OR IGNORE INTO `accounts` " +
		"(id, account_type, value, source_id) VALUES ($id, $type, $value, $source)")
	if err != nil {
		return ref, err
	}
	stmt.SetText("$id", "account--"+uuid.New().String())
	stmt.SetText("$type", string(accountType))
	stmt.SetText("$value", value)
	stmt.SetInt64("$source", source.ID)
	if err := exec(stmt); err != nil {
		return ref, errors.Wrap(err, "could not insert account")
	}

	stmt, err = store.cursor.Prepare("SELECT id FROM `accounts` " +
		"WHERE account_type = $type AND value = $value AND source_id = $source")
	if err != nil {
		return ref, err
	}
	stmt.SetText("$type", string(accountType))
	stmt.SetText("$value", value)
	stmt.SetInt64("$source", source.ID)

	hasRow, err := stmt.Step()
	if err != nil {
		return ref, err
	}
	if !hasRow {
		return ref, errors.New("account does not exist")
	}
	ref.ID = stmt.GetText("id")
	return ref, stmt.Finalize()
}

// AddRelationship links source to every target account, attributed to
// the given evidence node. A nil source adds no edges.
func (store *CaseStore) AddRelationship(source *emailparser.AccountRef, targets []emailparser.AccountRef,
	node emailparser.NodeRef, kind emailparser.RelationshipKind, seconds int64) error {
	if source == nil {
		return nil
	}

	store.mutex.Lock()
	defer store.mutex.Unlock()

	for _, target := range targets {
		stmt, err := store.cursor.Prepare("INSERT INTO `relationships` " +
			"(id, source_account, target_account, node_id, kind, relationship_time) " +
			"VALUES ($id, $source, $target, $node, $kind, $time)")
		if err != nil {
			return err
		}
		stmt.SetText("$id", "relationship--"+uuid.New().String())
		stmt.SetText("$source", source.ID)
		stmt.SetText("$target", target.ID)
		stmt.SetText("$node", string(node))
		stmt.SetText("$kind", string(kind))
		stmt.SetInt64("$time", seconds)
		if err := exec(stmt); err != nil {
			return errors.Wrap(err, "could not insert relationship")
		}
	}
	return nil
}

/* ################################
#   Evidence store
################################ */

// CreateNode persists one evidence node with its complete attribute set
// and returns its handle. The element is validated against its kind
// schema before it is written.
func (store *CaseStore) CreateNode(kind emailparser.NodeKind, source *emailparser.SourceFile,
	attributes emailparser.Attributes) (emailparser.NodeRef, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	id := string(kind) + "--" + uuid.New().String()
	element := map[string]interface{}{
		"id":          id,
		discriminator: string(kind),
		"source_id":   source.ID,
		"attributes":  map[string]interface{}(attributes),
	}

	if err := store.insertElement(id, string(kind), source.ID, element); err != nil {
		return "", err
	}
	return emailparser.NodeRef(id), nil
}

// NodeExists reports whether a node of the given kind with an identical
// attribute set exists for the same source file.
func (store *CaseStore) NodeExists(kind emailparser.NodeKind, source *emailparser.SourceFile,
	attributes emailparser.Attributes) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	candidate, err := json.Marshal(map[string]interface{}(attributes))
	if err != nil {
		return false, err
	}

	stmt, err := store.cursor.Prepare("SELECT json FROM `elements` " +
		"WHERE kind = $kind AND source_id = $source")
	if err != nil {
		return false, err
	}
	stmt.SetText("$kind", string(kind))
	stmt.SetInt64("$source", source.ID)

	elements, err := store.rowsToElements(stmt)
	if err != nil {
		return false, err
	}
	for _, element := range elements {
		if gjson.GetBytes(element, "attributes").Raw == string(candidate) {
			return true, nil
		}
	}
	return false, nil
}

// AddDerivedFile registers extracted content as its own element. Empty
// and unknown values are pruned from the element.
func (store *CaseStore) AddDerivedFile(derived emailparser.DerivedFile) (emailparser.DerivedFileRef, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	attributes := lower(structs.Map(derived)).(map[string]interface{})
	delete(attributes, "source_id")

	id := string(emailparser.KindDerivedFile) + "--" + uuid.New().String()
	element := map[string]interface{}{
		"id":          id,
		discriminator: string(emailparser.KindDerivedFile),
		"source_id":   derived.SourceID,
		"attributes":  attributes,
	}

	if err := store.insertElement(id, string(emailparser.KindDerivedFile), derived.SourceID, element); err != nil {
		return emailparser.DerivedFileRef{}, err
	}
	return emailparser.DerivedFileRef{
		ID:   id,
		Name: derived.Name,
		Path: derived.Path,
		Size: derived.Size,
	}, nil
}

// Index registers an element with the keyword search index.
func (store *CaseStore) Index(node emailparser.NodeRef) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	element, err := store.get(string(node))
	if err != nil {
		return err
	}

	stmt, err := store.cursor.Prepare("INSERT INTO `search_index` (id, json) VALUES ($id, $json)")
	if err != nil {
		return err
	}
	stmt.SetText("$id", string(node))
	stmt.SetText("$json", string(element))
	return exec(stmt)
}

func (store *CaseStore) insertElement(id, kind string, sourceID int64, element map[string]interface{}) error {
	b, err := json.Marshal(element)
	if err != nil {
		return err
	}

	flaws, err := validateElement(b)
	if err != nil {
		return errors.Wrap(err, "validation failed")
	}
	if len(flaws) > 0 {
		return fmt.Errorf("element could not be validated [%s]", strings.Join(flaws, ","))
	}

	flatElement, err := flatten(element)
	if err != nil {
		return errors.Wrap(err, "could not flatten element")
	}
	for field := range flatElement {
		store.noteKindColumn(kind, field)
	}

	stmt, err := store.cursor.Prepare("INSERT INTO `elements` " +
		"(id, kind, source_id, json, insert_time) VALUES ($id, $kind, $source, $json, $time)")
	if err != nil {
		return err
	}
	stmt.SetText("$id", id)
	stmt.SetText("$kind", kind)
	stmt.SetInt64("$source", sourceID)
	stmt.SetText("$json", string(b))
	stmt.SetText("$time", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	if err := exec(stmt); err != nil {
		return errors.Wrap(err, "could not insert element")
	}
	return nil
}

// noteKindColumn records an attribute column for an element kind.
// Callers must hold store.mutex.
func (store *CaseStore) noteKindColumn(kind, column string) {
	fields, ok := store.kinds[kind]
	if !ok {
		fields = map[string]bool{}
		store.kinds[kind] = fields
	}
	if !fields[column] {
		fields[column] = true
		store.kindsChanged = true
	}
}

/* ################################
#   Queries
################################ */

// Get retrieves a single element.
func (store *CaseStore) Get(id string) (JSONElement, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return store.get(id)
}

func (store *CaseStore) get(id string) (JSONElement, error) {
	stmt, err := store.cursor.Prepare("SELECT json FROM `elements` WHERE id = $id")
	if err != nil {
		return nil, err
	}
	stmt.SetText("$id", id)

	elements, err := store.rowsToElements(stmt)
	if err != nil {
		return nil, err
	}
	if len(elements) > 0 {
		return elements[0], nil
	}
	return nil, errors.New("element does not exist")
}

// Select retrieves all elements of one kind.
func (store *CaseStore) Select(kind string) ([]JSONElement, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	stmt, err := store.cursor.Prepare("SELECT json FROM `elements` WHERE kind = $kind")
	if err != nil {
		return nil, err
	}
	stmt.SetText("$kind", kind)
	return store.rowsToElements(stmt)
}

// All returns every element.
func (store *CaseStore) All() ([]JSONElement, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	stmt, err := store.cursor.Prepare("SELECT json FROM `elements`")
	if err != nil {
		return nil, err
	}
	return store.rowsToElements(stmt)
}

// Search returns all indexed elements matching a full text query.
func (store *CaseStore) Search(query string) ([]JSONElement, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	stmt, err := store.cursor.Prepare("SELECT json FROM `search_index` WHERE search_index = $query")
	if err != nil {
		return nil, err
	}
	stmt.SetText("$query", query)
	return store.rowsToElements(stmt)
}

// Accounts returns every resolved account.
func (store *CaseStore) Accounts() ([]Account, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	stmt, err := store.cursor.Prepare("SELECT id, account_type, value, source_id FROM `accounts` " +
		"ORDER BY account_type, value, source_id")
	if err != nil {
		return nil, err
	}

	var accounts []Account
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return nil, err
		} else if !hasRow {
			break
		}
		accounts = append(accounts, Account{
			ID:       stmt.GetText("id"),
			Type:     stmt.GetText("account_type"),
			Value:    stmt.GetText("value"),
			SourceID: stmt.GetInt64("source_id"),
		})
	}
	return accounts, stmt.Finalize()
}

// Relationships returns every account edge.
func (store *CaseStore) Relationships() ([]Relationship, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	stmt, err := store.cursor.Prepare("SELECT id, source_account, target_account, node_id, kind, " +
		"relationship_time FROM `relationships` ORDER BY rowid")
	if err != nil {
		return nil, err
	}

	var relationships []Relationship
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return nil, err
		} else if !hasRow {
			break
		}
		relationships = append(relationships, Relationship{
			ID:       stmt.GetText("id"),
			SourceID: stmt.GetText("source_account"),
			TargetID: stmt.GetText("target_account"),
			NodeID:   stmt.GetText("node_id"),
			Kind:     stmt.GetText("kind"),
			Seconds:  stmt.GetInt64("relationship_time"),
		})
	}
	return relationships, stmt.Finalize()
}

// Close materializes the per kind views and closes the database.
func (store *CaseStore) Close() error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.kindsChanged {
		_ = store.createViews()
	}

	return store.cursor.Close()
}

func (store *CaseStore) createViews() error {
	for kind, fields := range store.kinds {
		err := store.exec(fmt.Sprintf("DROP VIEW IF EXISTS '%s'", kind))
		if err != nil {
			return err
		}
		var columns []string
		for field := range fields {
			columns = append(columns, fmt.Sprintf("json_extract(json, '$.%s') as '%s'", field, field))
		}
		sort.Strings(columns)
		err = store.exec(
			fmt.Sprintf("CREATE VIEW '%s' AS SELECT %s FROM elements WHERE kind = '%s'", // #nosec
				kind, strings.Join(columns, ", "), kind),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

/* ################################
#   Intern
################################ */

func (store *CaseStore) rowsToElements(stmt *sqlite.Stmt) ([]JSONElement, error) {
	elements := []JSONElement{}
	for {
		if hasRow, err := stmt.Step(); err != nil {
			return nil, err
		} else if !hasRow {
			break
		}
		elements = append(elements, JSONElement(stmt.GetText("json")))
	}
	return elements, stmt.Finalize()
}

func isKindView(name string) bool {
	if strings.HasPrefix(name, "sqlite") || strings.HasPrefix(name, "_") {
		return false
	}
	switch name {
	case "elements", "elements_kind_source", "accounts", "relationships", "search_index":
		return false
	}

	for _, suffix := range []string{"_data", "_idx", "_content", "_docsize", "_config"} {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}

func (store *CaseStore) setupKinds() error {
	stmt, err := store.cursor.Prepare("SELECT name FROM sqlite_master")
	if err != nil {
		return err
	}

	for {
		if hasRow, err := stmt.Step(); err != nil {
			return err
		} else if !hasRow {
			break
		}

		name := stmt.GetText("name")

		if !isKindView(name) {
			continue
		}

		pragmaStmt, err := store.cursor.Prepare(fmt.Sprintf("PRAGMA table_info (\"%s\")", name))
		if err != nil {
			return err
		}

		for {
			if pragmaHasRow, err := pragmaStmt.Step(); err != nil {
				return err
			} else if !pragmaHasRow {
				break
			}

			columnName := pragmaStmt.GetText("name")
			store.noteKindColumn(name, columnName)
		}
		err = pragmaStmt.Finalize()
		if err != nil {
			return err
		}
	}

	// Restored view columns are not changes. Close rewrites the views
	// only when an insert added a new column.
	store.kindsChanged = false

	return stmt.Finalize()
}

func (store *CaseStore) exec(query string) error {
	stmt, err := store.cursor.Prepare(query)
	if err != nil {
		return err
	}
	return exec(stmt)
}

func exec(stmt *sqlite.Stmt) error {
	_, err := stmt.Step()
	if err != nil {
		return err
	}
	return stmt.Finalize()
}

var _ emailparser.AccountStore = &CaseStore{}
var _ emailparser.EvidenceStore = &CaseStore{}
