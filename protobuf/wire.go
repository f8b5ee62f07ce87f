// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package protobuf implements the minimal protocol-buffers wire-format
// reader and writer the save pipeline needs to locate item blobs and
// scalar fields inside the player payload, plus a schema-driven
// apply/remove-structure pass that turns a raw field-number map into a
// named tree and back.
//
// This is deliberately not google.golang.org/protobuf: the pack's own
// reference (original_source/borderlands/savefile.py, via its
// borderlands.util.protobuf helpers) reads messages into a plain
// field-number -> occurrences map rather than through generated
// message types, and the schema that would drive a real generated
// message is explicitly out of scope (the caller supplies it). The
// reader/writer shape below mirrors that: a thin varint/fixed/length-
// delimited walker over a byte slice, styled after the teacher's
// bitstream.Reader (sequential cursor, panic-on-truncation via
// bl2err.CodecError recovered at the package boundary).
package protobuf

import (
	"encoding/binary"

	"github.com/borderlands2/bl2save/bl2err"
)

// WireType identifies how a field's payload is encoded on the wire.
type WireType uint8

const (
	WireVarint WireType = 0
	WireFixed64 WireType = 1
	WireBytes   WireType = 2
	WireFixed32 WireType = 5
)

// Occurrence is a single (wire type, decoded value) pair for one
// appearance of a field on the wire. Value holds a uint64 for Varint/
// Fixed32/Fixed64, or a []byte for Bytes.
type Occurrence struct {
	WireType WireType
	Value    any
}

// Message preserves field-number insertion order and, within a field,
// occurrence order, so re-serialization reproduces the original wire
// bytes for any field the caller didn't touch.
type Message struct {
	order  []uint32
	fields map[uint32][]Occurrence
}

// NewMessage returns an empty Message.
func NewMessage() *Message {
	return &Message{fields: make(map[uint32][]Occurrence)}
}

// Fields returns the field numbers in first-insertion order.
func (m *Message) Fields() []uint32 { return append([]uint32(nil), m.order...) }

// Get returns the occurrences recorded for a field number, or nil.
func (m *Message) Get(field uint32) []Occurrence { return m.fields[field] }

// Set replaces all occurrences of field with occs, preserving the
// field's existing position in Fields() if it already appeared.
func (m *Message) Set(field uint32, occs []Occurrence) {
	if _, ok := m.fields[field]; !ok {
		m.order = append(m.order, field)
	}
	m.fields[field] = occs
}

// Append records one more occurrence of field, appending field to the
// order list the first time it's seen.
func (m *Message) Append(field uint32, occ Occurrence) {
	if _, ok := m.fields[field]; !ok {
		m.order = append(m.order, field)
	}
	m.fields[field] = append(m.fields[field], occ)
}

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
	case *bl2err.CodecError:
		*err = ex
	default:
		panic(ex)
	}
}

type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) byte() byte {
	if c.pos >= len(c.data) {
		panic(bl2err.NewTruncated("protobuf"))
	}
	b := c.data[c.pos]
	c.pos++
	return b
}

func (c *cursor) bytes(n int) []byte {
	if c.pos+n > len(c.data) {
		panic(bl2err.NewTruncated("protobuf"))
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) varint() uint64 {
	var result uint64
	var shift uint
	for {
		b := c.byte()
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result
		}
		shift += 7
		if shift >= 64 {
			panic(bl2err.NewTruncated("protobuf"))
		}
	}
}

func (c *cursor) fixed32() uint64 {
	return uint64(binary.LittleEndian.Uint32(c.bytes(4)))
}

func (c *cursor) fixed64() uint64 {
	return binary.LittleEndian.Uint64(c.bytes(8))
}

// ReadMessage parses data into a Message, preserving field and
// occurrence order. It fails if a tag names an unsupported wire type
// or the stream ends mid-field.
func ReadMessage(data []byte) (msg *Message, err error) {
	defer errRecover(&err)
	return readMessage(data), nil
}

func readMessage(data []byte) *Message {
	c := &cursor{data: data}
	msg := NewMessage()
	for c.pos < len(c.data) {
		tag := c.varint()
		field := uint32(tag >> 3)
		wt := WireType(tag & 0x7)
		occ := readValue(c, wt, field)
		msg.Append(field, occ)
	}
	return msg
}

func readValue(c *cursor, wt WireType, field uint32) Occurrence {
	switch wt {
	case WireVarint:
		return Occurrence{WireType: wt, Value: c.varint()}
	case WireFixed64:
		return Occurrence{WireType: wt, Value: c.fixed64()}
	case WireBytes:
		n := int(c.varint())
		return Occurrence{WireType: wt, Value: append([]byte(nil), c.bytes(n)...)}
	case WireFixed32:
		return Occurrence{WireType: wt, Value: c.fixed32()}
	default:
		panic(bl2err.NewInvalidWireType(uint32(wt), field))
	}
}

// WriteMessage serializes msg back to wire bytes in field and
// occurrence insertion order.
func WriteMessage(msg *Message) []byte {
	var out []byte
	for _, field := range msg.order {
		for _, occ := range msg.fields[field] {
			out = appendTag(out, field, occ.WireType)
			out = appendValue(out, occ)
		}
	}
	return out
}

func appendVarint(out []byte, v uint64) []byte {
	for v >= 0x80 {
		out = append(out, byte(v)|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

func appendTag(out []byte, field uint32, wt WireType) []byte {
	return appendVarint(out, uint64(field)<<3|uint64(wt))
}

func appendValue(out []byte, occ Occurrence) []byte {
	switch occ.WireType {
	case WireVarint:
		return appendVarint(out, occ.Value.(uint64))
	case WireFixed64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], occ.Value.(uint64))
		return append(out, buf[:]...)
	case WireBytes:
		b := occ.Value.([]byte)
		out = appendVarint(out, uint64(len(b)))
		return append(out, b...)
	case WireFixed32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(occ.Value.(uint64)))
		return append(out, buf[:]...)
	default:
		panic(bl2err.NewInvalidWireType(uint32(occ.WireType), 0))
	}
}

// ReadRepeatedPacked decodes a length-delimited field whose payload is
// a packed run of varints (as used by, e.g., a black-market SDU list).
func ReadRepeatedPacked(data []byte) (values []uint64, err error) {
	defer errRecover(&err)
	c := &cursor{data: data}
	for c.pos < len(c.data) {
		values = append(values, c.varint())
	}
	return values, nil
}

// WriteRepeatedPacked is the inverse of ReadRepeatedPacked.
func WriteRepeatedPacked(values []uint64) []byte {
	var out []byte
	for _, v := range values {
		out = appendVarint(out, v)
	}
	return out
}
