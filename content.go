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
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// AttachmentStore writes extracted attachment content below a single
// output directory. Unlike staged container copies, stored attachments
// are kept, they back the derived file records. An AttachmentStore may
// be shared by concurrent pipeline invocations.
type AttachmentStore struct {
	fs    afero.Fs
	dir   string
	mutex sync.Mutex
}

// NewAttachmentStore creates an AttachmentStore writing to dir on fs.
func NewAttachmentStore(fs afero.Fs, dir string) *AttachmentStore {
	return &AttachmentStore{fs: fs, dir: dir}
}

// StoreFile creates a file for one attachment and returns its path. A
// name colliding with stored content gets a numeric suffix before the
// extension. Attachment names come from untrusted containers, path
// components are stripped.
func (s *AttachmentStore) StoreFile(name string) (storePath string, file io.WriteCloser, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = filepath.Base(filepath.FromSlash(name))
	if name == "." || name == string(filepath.Separator) {
		name = "attachment"
	}

	if err := s.fs.MkdirAll(s.dir, 0750); err != nil {
		return "", nil, err
	}

	i := 0
	ext := filepath.Ext(name)
	storePath = filepath.Join(s.dir, name)
	base := storePath[:len(storePath)-len(ext)]

	exists, err := afero.Exists(s.fs, storePath)
	if err != nil {
		return "", nil, err
	}
	for exists {
		storePath = fmt.Sprintf("%s_%d%s", base, i, ext)
		i++
		exists, err = afero.Exists(s.fs, storePath)
		if err != nil {
			return "", nil, err
		}
	}

	file, err = s.fs.Create(storePath)
	return storePath, file, err
}
