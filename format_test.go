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

import "testing"

func TestDetectFormat(t *testing.T) {
	mboxPrefix := []byte("From bob@example.com Mon Apr  6 15:34:02 2020\r\nReceived: by")

	type args struct {
		prefix []byte
		size   int64
	}
	tests := []struct {
		name string
		args args
		want ContainerFormat
	}{
		{"Mbox", args{mboxPrefix, 4096}, FormatMbox},
		{"Mbox at size boundary", args{mboxPrefix, SniffLen}, FormatUnknown},
		{"Mbox below size boundary", args{[]byte("From bob@example.com"), 20}, FormatUnknown},
		{"Pst", args{[]byte{0x21, 0x42, 0x44, 0x4e, 0x01, 0x02}, 271360}, FormatPst},
		{"Pst tiny", args{[]byte{0x21, 0x42, 0x44, 0x4e}, 4}, FormatPst},
		{"Vcard", args{[]byte("BEGIN:VCARD\r\nVERSION:3.0\r\n"), 26}, FormatVcard},
		{"Vcard lowercase", args{[]byte("begin:vcard\r\nfn:Bob\r\n"), 21}, FormatVcard},
		{"Vcard truncated", args{[]byte("BEGIN:VCA"), 9}, FormatUnknown},
		{"Empty", args{nil, 0}, FormatUnknown},
		{"Text", args{[]byte("Return-Path: <bob@example.com>"), 4096}, FormatUnknown},
		{"Zip", args{[]byte{0x50, 0x4b, 0x03, 0x04}, 1024}, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.args.prefix, tt.args.size); got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainerFormat_String(t *testing.T) {
	tests := []struct {
		name string
		f    ContainerFormat
		want string
	}{
		{"Mbox", FormatMbox, "mbox"},
		{"Pst", FormatPst, "pst"},
		{"Vcard", FormatVcard, "vcard"},
		{"Unknown", FormatUnknown, "unknown"},
		{"Out of range", ContainerFormat(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.String(); got != tt.want {
				t.Errorf("ContainerFormat.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
