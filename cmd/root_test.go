package cmd

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/forensicanalysis/emailparser"
	"github.com/forensicanalysis/emailparser/casestore"
)

func setupGraph(t *testing.T) (dir, storePath, accountsJSON, relationshipsJSON string) {
	dir, err := ioutil.TempDir("", "emailparsercmd")
	if err != nil {
		t.Fatal(err)
	}

	storePath = filepath.Join(dir, "example.emailparser")
	store, err := casestore.New(storePath)
	if err != nil {
		t.Fatal(err)
	}

	source := &emailparser.SourceFile{ID: 11, Name: "inbox"}
	sender, err := store.GetOrCreateAccount(emailparser.AccountTypeEmail, "bob@example.com", source)
	if err != nil {
		t.Fatal(err)
	}
	recipient, err := store.GetOrCreateAccount(emailparser.AccountTypeEmail, "alice@example.com", source)
	if err != nil {
		t.Fatal(err)
	}
	err = store.AddRelationship(&sender, []emailparser.AccountRef{recipient},
		emailparser.NodeRef("email-message--0e2a4b"), emailparser.RelationshipMessage, 1586187242)
	if err != nil {
		t.Fatal(err)
	}

	accounts, err := store.Accounts()
	if err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(accounts)
	relationships, err := store.Relationships()
	if err != nil {
		t.Fatal(err)
	}
	r, _ := json.Marshal(relationships)

	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return dir, storePath, string(a), string(r)
}

func TestCreate(t *testing.T) {
	dir, err := ioutil.TempDir("", "emailparsercmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	storePath := filepath.Join(dir, "new.emailparser")

	cmd := Create()
	if err := cmd.RunE(cmd, []string{storePath}); err != nil {
		t.Errorf("Create() error = %v", err)
	}
	if _, err := os.Stat(storePath); err != nil {
		t.Errorf("Create() did not create %s: %v", storePath, err)
	}

	if err := cmd.RunE(cmd, []string{storePath}); err == nil {
		t.Error("Create() on an existing store should fail")
	}
}

func TestAccounts(t *testing.T) {
	dir, storePath, accountsJSON, _ := setupGraph(t)
	defer os.RemoveAll(dir)

	cmd := Accounts()
	output := stdout(func() {
		if err := cmd.RunE(cmd, []string{storePath}); err != nil {
			t.Errorf("Accounts() error = %v", err)
			return
		}
	})

	if string(output) != accountsJSON+"\n" {
		t.Errorf("Accounts got = %v, want %v", string(output), accountsJSON)
	}
}

func TestRelationships(t *testing.T) {
	dir, storePath, _, relationshipsJSON := setupGraph(t)
	defer os.RemoveAll(dir)

	cmd := Relationships()
	output := stdout(func() {
		if err := cmd.RunE(cmd, []string{storePath}); err != nil {
			t.Errorf("Relationships() error = %v", err)
			return
		}
	})

	if string(output) != relationshipsJSON+"\n" {
		t.Errorf("Relationships got = %v, want %v", string(output), relationshipsJSON)
	}
}

func Test_requireOneStore(t *testing.T) {
	dir, storePath, _, _ := setupGraph(t)
	defer os.RemoveAll(dir)

	type args struct {
		args []string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{"existing store", args{[]string{storePath}}, false},
		{"missing store", args{[]string{filepath.Join(dir, "missing")}}, true},
		{"no argument", args{nil}, true},
		{"two arguments", args{[]string{storePath, storePath}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := requireOneStore(nil, tt.args.args); (err != nil) != tt.wantErr {
				t.Errorf("requireOneStore() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
