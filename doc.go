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

// Package emailparser extracts communication evidence (e-mail messages,
// contacts, accounts and the relationships between them) from container
// files found during forensic processing.
//
// Processing model
//
// A file runs through the following stages:
//     - The container format (mbox, pst or vcard) is classified from the
//       first bytes of the file.
//     - The file content is staged into a scratch directory, bounded by
//       the known free disk space and cancellable at any time.
//     - A format specific parser adapter normalizes the content into
//       message and contact records.
//     - The records become typed evidence nodes, account nodes and
//       relationship edges in the case stores. Message attachments are
//       registered as derived files and handed back to the processing
//       queue.
//
// Partial failures (a single unresolvable address, a single broken
// message, a failed index registration) never abort the remaining
// records of a file. The collaborating stores, the disk monitor and the
// user notification channel are injected, so the pipeline itself keeps
// no global state.
package emailparser
