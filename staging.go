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
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrInsufficientSpace is returned by Stage when the source file does
// not fit into the known free disk space. No copy is attempted then.
var ErrInsufficientSpace = errors.New("not enough disk space to write file to disk")

// stageChunkSize bounds the bytes copied between two cancellation
// checks.
const stageChunkSize = 64 * 1024

// Stager copies container files into a scratch directory so the format
// parsers can work on a local, seekable copy.
type Stager struct {
	fs     afero.Fs
	dir    string
	disk   DiskMonitor
	logger *log.Logger
}

// NewStager creates a Stager writing to dir on fs. disk bounds staging
// by the known free space.
func NewStager(fs afero.Fs, dir string, disk DiskMonitor, logger *log.Logger) *Stager {
	return &Stager{fs: fs, dir: dir, disk: disk, logger: logger}
}

// Stage copies the content of source into the scratch directory under
// the name <name>-<id>. The copy observes ctx between chunks, so a
// cancellation aborts within one chunk. On any failure, cancellation
// included, the partial copy is removed before Stage returns.
func (s *Stager) Stage(ctx context.Context, source *SourceFile, r io.Reader) (*StagedFile, error) {
	if free, known := s.disk.FreeSpace(); known && uint64(source.Size) >= free {
		return nil, ErrInsufficientSpace
	}

	if err := s.fs.MkdirAll(s.dir, 0750); err != nil {
		return nil, errors.Wrap(err, "could not create staging directory")
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s-%d", source.Name, source.ID))
	f, err := s.fs.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not create staged file")
	}

	staged := &StagedFile{Path: path, fs: s.fs, logger: s.logger}
	if err := copyCancellable(ctx, f, r); err != nil {
		_ = f.Close()
		staged.Remove()
		return nil, err
	}
	if err := f.Close(); err != nil {
		staged.Remove()
		return nil, errors.Wrap(err, "could not write staged file")
	}
	return staged, nil
}

func copyCancellable(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, stageChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "could not write staged file")
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "could not read source content")
		}
	}
}

// StagedFile is the temporary copy of one source file. Remove must run
// on every exit path once processing is done, callers usually defer it
// right after staging.
type StagedFile struct {
	Path string

	fs     afero.Fs
	logger *log.Logger
}

// Remove deletes the staged copy. Deletion failures are logged, not
// escalated.
func (f *StagedFile) Remove() {
	if err := f.fs.Remove(f.Path); err != nil {
		logf(f.logger, "failed to delete temp file %s: %v", f.Path, err)
	}
}
