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
	"reflect"
	"testing"
)

func TestAttributes_AddString(t *testing.T) {
	type add struct {
		key   string
		value string
	}
	tests := []struct {
		name string
		adds []add
		want Attributes
	}{
		{"Single", []add{{AttrSubject, "quarterly report"}}, Attributes{AttrSubject: "quarterly report"}},
		{"Empty dropped", []add{{AttrSubject, ""}}, Attributes{}},
		{"Repeated key collects", []add{
			{AttrPhone, "555-1234"},
			{AttrPhone, "555-5678"},
			{AttrPhone, "555-9012"},
		}, Attributes{AttrPhone: []interface{}{"555-1234", "555-5678", "555-9012"}}},
		{"Mixed keys stay scalar", []add{
			{AttrEmailHome, "bob@example.com"},
			{AttrEmailOffice, "bob@corp.example.com"},
		}, Attributes{AttrEmailHome: "bob@example.com", AttrEmailOffice: "bob@corp.example.com"}},
		{"Empty between repeats", []add{
			{AttrURL, "https://example.com"},
			{AttrURL, ""},
			{AttrURL, "https://example.org"},
		}, Attributes{AttrURL: []interface{}{"https://example.com", "https://example.org"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Attributes{}
			for _, a := range tt.adds {
				got.AddString(a.key, a.value)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Attributes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttributes_AddTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    Attributes
	}{
		{"Positive", 1586187242, Attributes{AttrSentTime: int64(1586187242)}},
		{"Zero dropped", 0, Attributes{}},
		{"Negative dropped", -1, Attributes{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Attributes{}
			got.AddTime(AttrSentTime, tt.seconds)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Attributes = %v, want %v", got, tt.want)
			}
		})
	}
}
