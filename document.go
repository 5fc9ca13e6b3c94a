// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package couchdb2

import (
	"encoding/json"
)

// Document is a schema-less CouchDB document: a mapping from string keys to
// arbitrary JSON values. Two keys are reserved for protocol metadata: "_id",
// the document's unique identifier within a database, and "_rev", the opaque
// revision token assigned by the server on every successful write. A write
// with a "_rev" that does not match the server's current revision fails with
// a conflict.
type Document map[string]interface{}

// ID returns the document's "_id" value, or "" if unset.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Rev returns the document's "_rev" value, or "" if unset.
func (d Document) Rev() string {
	rev, _ := d["_rev"].(string)
	return rev
}

// Attachments returns the metadata of the document's attachments, keyed by
// attachment name, as recorded in the document's "_attachments" member. The
// result is nil when the document has no attachments.
func (d Document) Attachments() map[string]AttachmentMeta {
	raw, ok := d["_attachments"]
	if !ok {
		return nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var atts map[string]AttachmentMeta
	if err := json.Unmarshal(buf, &atts); err != nil {
		return nil
	}
	return atts
}

// clone returns a shallow copy of the document.
func (d Document) clone() Document {
	c := make(Document, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}
