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
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// encryptionFileLevel is the name attribute of encryption detections.
const encryptionFileLevel = "File-level Encryption"

// Result is the per-file outcome reported to the host framework.
type Result int

// Per-file outcomes. Recoverable conditions like unknown formats,
// insufficient disk space or skipped files still count as ResultOK.
const (
	ResultOK Result = iota
	ResultError
)

// Config bundles the collaborators of a Pipeline. FS defaults to the
// operating system file system.
type Config struct {
	Accounts AccountStore
	Evidence EvidenceStore
	Queue    JobQueue
	Disk     DiskMonitor
	Notifier Notifier
	Logger   *log.Logger
	FS       afero.Fs
	TempDir  string
	Parsers  map[ContainerFormat]Parser
}

// Pipeline processes single container files into communication
// evidence. A Pipeline holds no per-file state and may process
// different files concurrently.
type Pipeline struct {
	builder  *GraphBuilder
	relay    *Relay
	stager   *Stager
	evidence EvidenceStore
	queue    JobQueue
	notifier Notifier
	logger   *log.Logger
	parsers  map[ContainerFormat]Parser
}

// NewPipeline creates a Pipeline from the given collaborators.
func NewPipeline(c Config) *Pipeline {
	fs := c.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Pipeline{
		builder:  NewGraphBuilder(c.Accounts, c.Evidence, c.Notifier, c.Logger),
		relay:    NewRelay(c.Evidence, c.Notifier, c.Logger),
		stager:   NewStager(fs, c.TempDir, c.Disk, c.Logger),
		evidence: c.Evidence,
		queue:    c.Queue,
		notifier: c.Notifier,
		logger:   c.Logger,
		parsers:  c.Parsers,
	}
}

// Process classifies, stages and parses a single file and persists all
// extracted evidence. r streams the file content. Failures within the
// file surface as one aggregated notification, only an unparseable
// container yields ResultError.
func (p *Pipeline) Process(ctx context.Context, file *SourceFile, r io.Reader) Result {
	if file.Known {
		return ResultOK
	}
	if file.Kind != SourceRegular {
		return ResultOK
	}

	prefix := make([]byte, SniffLen)
	n, err := io.ReadFull(r, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		logf(p.logger, "failed to read signature of %s (id=%d): %v", file.Name, file.ID, err)
		return ResultOK
	}

	format := DetectFormat(prefix[:n], file.Size)
	if format == FormatUnknown {
		return ResultOK
	}

	parser, ok := p.parsers[format]
	if !ok {
		logf(p.logger, "no parser configured for %s, skipping %s (id=%d)", format, file.Name, file.ID)
		return ResultOK
	}

	staged, err := p.stager.Stage(ctx, file, io.MultiReader(bytes.NewReader(prefix[:n]), r))
	if err != nil {
		if errors.Is(err, ErrInsufficientSpace) {
			logf(p.logger, "not enough disk space to write file to disk")
			notifyError(p.notifier,
				fmt.Sprintf("Error while processing %s.", file.Name),
				fmt.Sprintf("Out of disk space. Cannot copy '%s' (id=%d) to parse.", file.Name, file.ID))
			return ResultOK
		}
		logf(p.logger, "failed writing %s file to disk: %v", format, err)
		return ResultOK
	}
	defer staged.Remove()

	result := parser.Parse(staged.Path, file)
	switch result.Status {
	case ParseOK:
		p.processMessages(result.Messages, file)
		p.processContacts(result.Contacts, file)
	case ParseEncrypted:
		p.addEncryptionDetection(file)
	case ParseFailed:
		logf(p.logger, "parser failed to parse %s: %s", file.Name, result.Errors)
		notifyError(p.notifier,
			fmt.Sprintf("Error while processing %s.", file.Name),
			"The file could not be parsed.")
		return ResultError
	}

	if result.Errors != "" {
		notifyError(p.notifier, fmt.Sprintf("Error while processing %s.", file.Name), result.Errors)
	}
	return ResultOK
}

// processMessages builds evidence for every message and requeues all
// derived attachment files of the source file as one batch.
func (p *Pipeline) processMessages(messages []*Message, file *SourceFile) {
	var derived []DerivedFileRef
	for _, msg := range messages {
		node, err := p.builder.AddMessage(msg, file)
		if err != nil {
			continue
		}
		if msg.HasAttachments() {
			derived = append(derived, p.relay.Relay(msg.Attachments, file, node)...)
		}
	}

	if len(derived) == 0 {
		return
	}
	for _, ref := range derived {
		p.queue.Announce(ref)
	}
	if err := p.queue.Enqueue(derived); err != nil {
		logf(p.logger, "failed to requeue %d derived files of %s: %v", len(derived), file.Name, err)
	}
}

func (p *Pipeline) processContacts(contacts []*Contact, file *SourceFile) {
	for _, contact := range contacts {
		if _, err := p.builder.AddContact(contact, file); err != nil {
			logf(p.logger, "failed to create contact from '%s' (id=%d): %v", file.Name, file.ID, err)
		}
	}
}

// addEncryptionDetection records a single encryption detection node for
// a container that cannot be read at file level.
func (p *Pipeline) addEncryptionDetection(file *SourceFile) {
	attrs := Attributes{}
	attrs.AddString(AttrName, encryptionFileLevel)

	node, err := p.evidence.CreateNode(KindEncryptionDetected, file, attrs)
	if err != nil {
		logf(p.logger, "failed to add encryption detection for %s: %v", file.Name, err)
		return
	}
	p.builder.index(node, "encryption detected")
}

func logf(logger *log.Logger, format string, v ...interface{}) {
	if logger == nil {
		log.Printf(format, v...)
		return
	}
	logger.Printf(format, v...)
}

func notifyError(notifier Notifier, subject, details string) {
	if notifier == nil {
		return
	}
	notifier.Error(subject, details)
}
