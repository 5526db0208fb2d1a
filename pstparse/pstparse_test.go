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

package pstparse

import (
	"bytes"
	"errors"
	"io/ioutil"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/forensicanalysis/emailparser"
)

func testParser() (*Parser, afero.Fs) {
	fs := afero.NewMemMapFs()
	attachments := emailparser.NewAttachmentStore(fs, "/work/attachments")
	return New(fs, attachments, log.New(ioutil.Discard, "", 0)), fs
}

func TestParser_Parse_Invalid(t *testing.T) {
	parser, fs := testParser()
	stagedPath := "/work/temp/outlook-11"
	// A PST header is larger and starts with a different signature.
	if err := afero.WriteFile(fs, stagedPath, bytes.Repeat([]byte("A"), 600), 0600); err != nil {
		t.Fatal(err)
	}
	source := &emailparser.SourceFile{ID: 11, Name: "outlook.pst"}

	result := parser.Parse(stagedPath, source)

	assert.Equal(t, emailparser.ParseFailed, result.Status)
	assert.Equal(t, "Failed to parse outlook.pst.", result.Errors)
	assert.Empty(t, result.Messages)
}

func TestParser_Parse_Missing(t *testing.T) {
	parser, _ := testParser()
	source := &emailparser.SourceFile{ID: 11, Name: "outlook.pst"}

	result := parser.Parse("/work/temp/outlook-11", source)

	assert.Equal(t, emailparser.ParseFailed, result.Status)
	assert.Equal(t, "Failed to open the staged copy of outlook.pst.", result.Errors)
}

func TestParser_failure(t *testing.T) {
	type args struct {
		err error
	}
	tests := []struct {
		name       string
		args       args
		wantStatus emailparser.ParseStatus
		wantErrors string
	}{
		{
			"encrypted",
			args{errors.New("unsupported encryption type: high")},
			emailparser.ParseEncrypted,
			"Failed to parse outlook.pst, the file is encrypted.",
		},
		{
			"encrypted upper case",
			args{errors.New("content is Encrypted")},
			emailparser.ParseEncrypted,
			"Failed to parse outlook.pst, the file is encrypted.",
		},
		{
			"corrupt",
			args{errors.New("invalid file signature")},
			emailparser.ParseFailed,
			"Failed to parse outlook.pst.",
		},
	}

	parser, _ := testParser()
	source := &emailparser.SourceFile{ID: 11, Name: "outlook.pst"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.failure(source, tt.args.err)

			if result.Status != tt.wantStatus {
				t.Errorf("failure() status = %v, want %v", result.Status, tt.wantStatus)
			}
			if result.Errors != tt.wantErrors {
				t.Errorf("failure() errors = %v, want %v", result.Errors, tt.wantErrors)
			}
		})
	}
}
