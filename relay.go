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
	"log"
)

// Relay registers extracted attachments as derived evidence files.
type Relay struct {
	evidence EvidenceStore
	notifier Notifier
	logger   *log.Logger
}

// NewRelay creates a Relay registering derived files with evidence.
func NewRelay(evidence EvidenceStore, notifier Notifier, logger *log.Logger) *Relay {
	return &Relay{evidence: evidence, notifier: notifier, logger: logger}
}

// Relay registers every attachment as a derived file of the owner node.
// A failed registration is reported and skips only that attachment, the
// remaining attachments are still registered. The caller announces and
// requeues the returned batch once all messages of the source file are
// processed.
func (r *Relay) Relay(attachments []Attachment, source *SourceFile, owner NodeRef) []DerivedFileRef {
	var refs []DerivedFileRef
	for _, attachment := range attachments {
		ref, err := r.evidence.AddDerivedFile(DerivedFile{
			Name:     attachment.Name,
			Path:     attachment.Path,
			Size:     attachment.Size,
			Ctime:    attachment.Ctime,
			Crtime:   attachment.Crtime,
			Atime:    attachment.Atime,
			Mtime:    attachment.Mtime,
			Encoding: attachment.Encoding,
			Parent:   owner,
			SourceID: source.ID,
		})
		if err != nil {
			logf(r.logger, "failed to add derived file %s from %s: %v", attachment.Name, source.Name, err)
			notifyError(r.notifier,
				fmt.Sprintf("Error processing attachments of %s.", source.Name),
				fmt.Sprintf("The attachment %s could not be added.", attachment.Name))
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
