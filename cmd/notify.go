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

package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/forensicanalysis/emailparser"
)

// notifier writes user visible processing problems to w, separate from
// the log stream.
type notifier struct {
	w io.Writer
}

func (n *notifier) Error(subject, details string) {
	fmt.Fprintf(n.w, "%s %s\n", subject, details)
}

// logQueue reports derived files instead of requeueing them. The
// command line runner has no host framework that could pick them up.
type logQueue struct {
	logger *log.Logger
}

func (q *logQueue) Announce(derived emailparser.DerivedFileRef) {
	q.logger.Printf("new content %s (%s)", derived.Name, derived.ID)
}

func (q *logQueue) Enqueue(derived []emailparser.DerivedFileRef) error {
	q.logger.Printf("%d derived files handed back for processing", len(derived))
	return nil
}

var _ emailparser.Notifier = &notifier{}
var _ emailparser.JobQueue = &logQueue{}
