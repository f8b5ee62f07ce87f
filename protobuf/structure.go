// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package protobuf

import (
	"encoding/base64"

	"github.com/borderlands2/bl2save/bl2err"
)

// Kind describes how a field's wire value should be interpreted once a
// schema has named it.
type Kind int

const (
	KindMessage Kind = iota
	KindInt
	KindString
	KindUTF8
	KindBase64Bytes
	KindCustom
)

// Codec lets a schema delegate a field's bytes to a domain-specific
// sub-codec (the item and challenge packages implement this) instead of
// one of the built-in Kinds.
type Codec interface {
	Decode(raw []byte) (any, error)
	Encode(v any) ([]byte, error)
}

// FieldSpec names one field of a schema-described message. Schema
// content itself (which field numbers map to which names) is supplied
// by the caller; this package only defines the shape a spec takes.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Repeated bool
	Nested   Schema // used when Kind == KindMessage
	Custom   Codec  // used when Kind == KindCustom
}

// Schema maps a field number to how it should be named and decoded.
type Schema map[uint32]FieldSpec

// InvertedSchema maps a field's human-readable name back to its field
// number and spec, the form RemoveStructure needs to go the other way.
type InvertedSchema map[string]invertedEntry

type invertedEntry struct {
	field uint32
	spec  FieldSpec
}

// InvertSchema builds the name-keyed inverse of schema.
func InvertSchema(schema Schema) InvertedSchema {
	inv := make(InvertedSchema, len(schema))
	for field, spec := range schema {
		inv[spec.Name] = invertedEntry{field: field, spec: spec}
	}
	return inv
}

// Tree is the named result of ApplyStructure. Values holds the field
// tree keyed by the schema's names (or by "#<field>" for fields the
// schema doesn't cover); Order lists those same keys in the message's
// original wire field order, which is what lets RemoveStructure put
// the fields back exactly where they came from.
type Tree struct {
	Values map[string]any
	Order  []string
}

// ApplyStructure converts a raw field-number-keyed Message into a named
// tree keyed by the schema's field names. Fields absent from the schema
// are passed through keyed by "#" plus their decimal field number so no
// data is silently dropped.
func ApplyStructure(msg *Message, schema Schema) Tree {
	out := Tree{
		Values: make(map[string]any),
		Order:  make([]string, 0, len(msg.Fields())),
	}
	for _, field := range msg.Fields() {
		occs := msg.Get(field)
		spec, named := schema[field]
		key := spec.Name
		if !named {
			key = unnamedKey(field)
			out.Values[key] = passthroughOccurrences(occs)
			out.Order = append(out.Order, key)
			continue
		}
		if spec.Repeated {
			vals := make([]any, len(occs))
			for i, occ := range occs {
				vals[i] = applyOne(occ, spec)
			}
			out.Values[key] = vals
		} else {
			out.Values[key] = applyOne(occs[0], spec)
		}
		out.Order = append(out.Order, key)
	}
	return out
}

func applyOne(occ Occurrence, spec FieldSpec) any {
	switch spec.Kind {
	case KindMessage:
		nested, err := ReadMessage(occ.Value.([]byte))
		if err != nil {
			panic(err)
		}
		return ApplyStructure(nested, spec.Nested)
	case KindInt:
		return int64(occ.Value.(uint64))
	case KindString, KindUTF8:
		return string(occ.Value.([]byte))
	case KindBase64Bytes:
		return base64.StdEncoding.EncodeToString(occ.Value.([]byte))
	case KindCustom:
		v, err := spec.Custom.Decode(occ.Value.([]byte))
		if err != nil {
			panic(err)
		}
		return v
	default:
		panic(bl2err.NewSchemaMismatch(0, "known kind", "unknown"))
	}
}

// RemoveStructure inverts ApplyStructure, producing a Message whose
// fields are emitted in tree.Order — the same field order the original
// message was read in — so remove(apply(m)) round-trips byte-exactly
// even when a message's fields aren't in ascending field-number order.
func RemoveStructure(tree Tree, inverted InvertedSchema) *Message {
	msg := NewMessage()
	for _, name := range tree.Order {
		v := tree.Values[name]
		entry, ok := inverted[name]
		if !ok {
			field, occs := removeUnnamed(name, v)
			msg.Set(field, occs)
			continue
		}
		msg.Set(entry.field, removeOne(v, entry.spec))
	}
	return msg
}

func removeOne(v any, spec FieldSpec) []Occurrence {
	if spec.Repeated {
		items := v.([]any)
		occs := make([]Occurrence, len(items))
		for i, item := range items {
			occs[i] = removeScalar(item, spec)
		}
		return occs
	}
	return []Occurrence{removeScalar(v, spec)}
}

func removeScalar(v any, spec FieldSpec) Occurrence {
	switch spec.Kind {
	case KindMessage:
		nested := RemoveStructure(v.(Tree), InvertSchema(spec.Nested))
		return Occurrence{WireType: WireBytes, Value: WriteMessage(nested)}
	case KindInt:
		return Occurrence{WireType: WireVarint, Value: uint64(v.(int64))}
	case KindString, KindUTF8:
		return Occurrence{WireType: WireBytes, Value: []byte(v.(string))}
	case KindBase64Bytes:
		raw, err := base64.StdEncoding.DecodeString(v.(string))
		if err != nil {
			panic(bl2err.NewSchemaMismatch(0, "base64", "invalid"))
		}
		return Occurrence{WireType: WireBytes, Value: raw}
	case KindCustom:
		raw, err := spec.Custom.Encode(v)
		if err != nil {
			panic(err)
		}
		return Occurrence{WireType: WireBytes, Value: raw}
	default:
		panic(bl2err.NewSchemaMismatch(0, "known kind", "unknown"))
	}
}

// unnamedKey and its inverse let ApplyStructure/RemoveStructure pass
// through fields the schema doesn't cover, keyed by field number so
// remove(apply(m)) stays the identity even on a partial schema.
func unnamedKey(field uint32) string {
	return "#" + itoa(field)
}

func removeUnnamed(name string, v any) (uint32, []Occurrence) {
	field, ok := parseUnnamedKey(name)
	if !ok {
		panic(bl2err.NewSchemaMismatch(0, "named or #field key", name))
	}
	return field, passthroughToOccurrences(v)
}

func passthroughOccurrences(occs []Occurrence) []any {
	out := make([]any, len(occs))
	for i, occ := range occs {
		out[i] = occ
	}
	return out
}

func passthroughToOccurrences(v any) []Occurrence {
	items := v.([]any)
	occs := make([]Occurrence, len(items))
	for i, item := range items {
		occs[i] = item.(Occurrence)
	}
	return occs
}

func itoa(field uint32) string {
	if field == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for field > 0 {
		i--
		buf[i] = byte('0' + field%10)
		field /= 10
	}
	return string(buf[i:])
}

func parseUnnamedKey(name string) (uint32, bool) {
	if len(name) < 2 || name[0] != '#' {
		return 0, false
	}
	var v uint32
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint32(c-'0')
	}
	return v, true
}
