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
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/qri-io/jsonschema"
	"github.com/tidwall/gjson"
)

const schemaBase = "https://forensicanalysis.github.io/emailparser/schemas/%s.json"

// schemaFS holds one draft 2019-09 schema per element kind. Kinds
// without a schema are stored unvalidated.
var schemaFS = map[string][]byte{ // nolint:gochecknoglobals
	"email-message.json": []byte(`{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://forensicanalysis.github.io/emailparser/schemas/email-message.json",
		"title": "email-message",
		"type": "object",
		"required": ["id", "type", "source_id", "attributes"],
		"properties": {
			"id": {"type": "string", "pattern": "^email-message--"},
			"type": {"const": "email-message"},
			"source_id": {"type": "integer"},
			"attributes": {
				"type": "object",
				"required": ["message_id", "path"],
				"properties": {
					"headers": {"type": "string"},
					"from": {"type": "string"},
					"to": {"type": "string"},
					"cc": {"type": "string"},
					"bcc": {"type": "string"},
					"subject": {"type": "string"},
					"sent_time": {"type": "integer"},
					"received_time": {"type": "integer"},
					"body_plain": {"type": "string"},
					"body_html": {"type": "string"},
					"body_rtf": {"type": "string"},
					"message_id": {"type": "string"},
					"path": {"type": "string"}
				}
			}
		}
	}`),
	"contact.json": []byte(`{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://forensicanalysis.github.io/emailparser/schemas/contact.json",
		"title": "contact",
		"type": "object",
		"required": ["id", "type", "source_id", "attributes"],
		"properties": {
			"id": {"type": "string", "pattern": "^contact--"},
			"type": {"const": "contact"},
			"source_id": {"type": "integer"},
			"attributes": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"url": {"type": ["string", "array"]},
					"organization": {"type": ["string", "array"]}
				},
				"patternProperties": {
					"^phone_number": {"type": ["string", "array"]},
					"^email": {"type": ["string", "array"]}
				}
			}
		}
	}`),
	"encryption-detected.json": []byte(`{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://forensicanalysis.github.io/emailparser/schemas/encryption-detected.json",
		"title": "encryption-detected",
		"type": "object",
		"required": ["id", "type", "source_id", "attributes"],
		"properties": {
			"id": {"type": "string", "pattern": "^encryption-detected--"},
			"type": {"const": "encryption-detected"},
			"source_id": {"type": "integer"},
			"attributes": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"}
				}
			}
		}
	}`),
	"derived-file.json": []byte(`{
		"$schema": "https://json-schema.org/draft/2019-09/schema",
		"$id": "https://forensicanalysis.github.io/emailparser/schemas/derived-file.json",
		"title": "derived-file",
		"type": "object",
		"required": ["id", "type", "source_id", "attributes"],
		"properties": {
			"id": {"type": "string", "pattern": "^derived-file--"},
			"type": {"const": "derived-file"},
			"source_id": {"type": "integer"},
			"attributes": {
				"type": "object",
				"required": ["name", "path"],
				"properties": {
					"name": {"type": "string"},
					"path": {"type": "string"},
					"size": {"type": "integer"},
					"crtime": {"type": "integer"},
					"mtime": {"type": "integer"},
					"atime": {"type": "integer"},
					"ctime": {"type": "integer"},
					"encoding": {"type": "string"},
					"parent": {"type": "string"}
				}
			}
		}
	}`),
}

var registerOnce sync.Once // nolint:gochecknoglobals
var registerErr error      // nolint:gochecknoglobals

func registerSchemas() error {
	registerOnce.Do(func() {
		registry := jsonschema.GetSchemaRegistry()
		for name, content := range schemaFS {
			schema := &jsonschema.Schema{}
			if err := json.Unmarshal(content, schema); err != nil {
				registerErr = fmt.Errorf("unmarshal error %s: %w", name, err)
				return
			}

			id := string(*schema.JSONProp("$id").(*jsonschema.ID))
			schema.Resolve(nil, id)
			registry.Register(schema)
		}
	})
	return registerErr
}

func validateElement(element []byte) (flaws []string, err error) {
	kind := gjson.GetBytes(element, discriminator)
	if !kind.Exists() {
		flaws = append(flaws, "element needs to have a type")
	}

	schema := jsonschema.GetSchemaRegistry().GetKnown(fmt.Sprintf(schemaBase, kind.String()))
	if schema == nil {
		return flaws, nil
	}

	errs, err := schema.ValidateBytes(context.Background(), element)
	if err != nil {
		return nil, err
	}
	for _, verr := range errs {
		flaws = append(flaws, fmt.Sprintf("failed to validate element: %s", verr))
	}
	return flaws, nil
}
