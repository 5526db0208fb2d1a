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

package casestore

import (
	"reflect"
	"testing"
)

func Test_flatten(t *testing.T) {
	type args struct {
		element map[string]interface{}
	}
	tests := []struct {
		name    string
		args    args
		want    map[string]interface{}
		wantErr bool
	}{
		{"flatten slice", args{map[string]interface{}{"cc": []interface{}{"a", "b"}}}, map[string]interface{}{"cc[0]": "a", "cc[1]": "b"}, false},
		{"flatten nested", args{map[string]interface{}{"attributes": map[string]interface{}{"subject": "re"}}}, map[string]interface{}{"attributes.subject": "re"}, false},
		{"flatten nested slice", args{map[string]interface{}{"attributes": map[string]interface{}{"cc": []interface{}{"a"}}}}, map[string]interface{}{"attributes.cc[0]": "a"}, false},
		{"flatten empty map", args{map[string]interface{}{"attributes": map[string]interface{}{}}}, map[string]interface{}{}, false},
		{"flatten empty string", args{map[string]interface{}{"subject": ""}}, map[string]interface{}{"subject": ""}, false},
		{"flatten nil", args{map[string]interface{}{"subject": nil}}, map[string]interface{}{}, false},
		{"flatten scalar", args{map[string]interface{}{"source_id": int64(11)}}, map[string]interface{}{"source_id": int64(11)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := flatten(tt.args.element)
			if (err != nil) != tt.wantErr {
				t.Errorf("flatten() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flatten() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_lower(t *testing.T) {
	type args struct {
		element map[string]interface{}
	}
	tests := []struct {
		name string
		args args
		want map[string]interface{}
	}{
		{"snake keys", args{map[string]interface{}{"SourceID": int64(1), "Name": "a.pdf"}}, map[string]interface{}{"source_id": int64(1), "name": "a.pdf"}},
		{"prune empty string", args{map[string]interface{}{"Name": ""}}, map[string]interface{}{}},
		{"prune zero time", args{map[string]interface{}{"Mtime": int64(0), "Crtime": int64(1586187242)}}, map[string]interface{}{"crtime": int64(1586187242)}},
		{"prune nil", args{map[string]interface{}{"Parent": nil}}, map[string]interface{}{}},
		{"prune empty slice", args{map[string]interface{}{"Errors": []interface{}{}}}, map[string]interface{}{}},
		{"nested map", args{map[string]interface{}{"Origin": map[string]interface{}{"LocalPath": "Inbox"}}}, map[string]interface{}{"origin": map[string]interface{}{"local_path": "Inbox"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lower(tt.args.element)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lower() = %v, want %v", got, tt.want)
			}
		})
	}
}
