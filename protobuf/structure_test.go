// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package protobuf

import (
	"reflect"
	"testing"
)

type doublingCodec struct{}

func (doublingCodec) Decode(raw []byte) (any, error) {
	return int64(raw[0]) * 2, nil
}

func (doublingCodec) Encode(v any) ([]byte, error) {
	return []byte{byte(v.(int64) / 2)}, nil
}

func TestApplyRemoveStructureRoundTrip(t *testing.T) {
	nested := Schema{
		1: {Name: "x", Kind: KindInt},
	}
	schema := Schema{
		1: {Name: "level", Kind: KindInt},
		2: {Name: "name", Kind: KindString},
		3: {Name: "tags", Kind: KindString, Repeated: true},
		4: {Name: "inner", Kind: KindMessage, Nested: nested},
		5: {Name: "blob", Kind: KindBase64Bytes},
		6: {Name: "packed", Kind: KindCustom, Custom: doublingCodec{}},
	}

	innerMsg := NewMessage()
	innerMsg.Append(1, Occurrence{WireType: WireVarint, Value: uint64(9)})

	msg := NewMessage()
	msg.Append(1, Occurrence{WireType: WireVarint, Value: uint64(42)})
	msg.Append(2, Occurrence{WireType: WireBytes, Value: []byte("axton")})
	msg.Append(3, Occurrence{WireType: WireBytes, Value: []byte("melee")})
	msg.Append(3, Occurrence{WireType: WireBytes, Value: []byte("gunzerk")})
	msg.Append(4, Occurrence{WireType: WireBytes, Value: WriteMessage(innerMsg)})
	msg.Append(5, Occurrence{WireType: WireBytes, Value: []byte{1, 2, 3}})
	msg.Append(6, Occurrence{WireType: WireBytes, Value: []byte{21}})

	tree := ApplyStructure(msg, schema)

	if tree.Values["level"].(int64) != 42 {
		t.Fatalf("level = %v", tree.Values["level"])
	}
	if tree.Values["name"].(string) != "axton" {
		t.Fatalf("name = %v", tree.Values["name"])
	}
	tags := tree.Values["tags"].([]any)
	if len(tags) != 2 || tags[0].(string) != "melee" || tags[1].(string) != "gunzerk" {
		t.Fatalf("tags = %v", tags)
	}
	inner := tree.Values["inner"].(Tree)
	if inner.Values["x"].(int64) != 9 {
		t.Fatalf("inner.x = %v", inner.Values["x"])
	}
	if tree.Values["packed"].(int64) != 42 {
		t.Fatalf("packed = %v", tree.Values["packed"])
	}

	inverted := InvertSchema(schema)
	rebuilt := RemoveStructure(tree, inverted)

	if !reflect.DeepEqual(rebuilt.Get(1)[0].Value, uint64(42)) {
		t.Fatalf("rebuilt field 1 = %+v", rebuilt.Get(1))
	}
	if string(rebuilt.Get(2)[0].Value.([]byte)) != "axton" {
		t.Fatalf("rebuilt field 2 = %+v", rebuilt.Get(2))
	}
	if len(rebuilt.Get(3)) != 2 {
		t.Fatalf("rebuilt field 3 = %+v", rebuilt.Get(3))
	}
	if !reflect.DeepEqual(rebuilt.Get(6)[0].Value, []byte{21}) {
		t.Fatalf("rebuilt field 6 = %+v", rebuilt.Get(6))
	}
}

func TestApplyRemoveStructurePreservesOutOfOrderFields(t *testing.T) {
	schema := Schema{
		53: {Name: "bank", Kind: KindString},
		54: {Name: "weapons", Kind: KindString},
	}

	msg := NewMessage()
	msg.Append(54, Occurrence{WireType: WireBytes, Value: []byte("weapon-data")})
	msg.Append(53, Occurrence{WireType: WireBytes, Value: []byte("bank-data")})

	tree := ApplyStructure(msg, schema)
	rebuilt := RemoveStructure(tree, InvertSchema(schema))

	got := rebuilt.Fields()
	want := []uint32{54, 53}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("field order = %v, want %v", got, want)
	}

	if !reflect.DeepEqual(WriteMessage(rebuilt), WriteMessage(msg)) {
		t.Fatalf("round trip is not byte-exact for out-of-order fields")
	}
}

func TestApplyStructurePassesThroughUnnamedFields(t *testing.T) {
	msg := NewMessage()
	msg.Append(99, Occurrence{WireType: WireVarint, Value: uint64(5)})

	tree := ApplyStructure(msg, Schema{})
	rebuilt := RemoveStructure(tree, InvertSchema(Schema{}))

	if rebuilt.Get(99)[0].Value.(uint64) != 5 {
		t.Fatalf("unnamed field not round tripped: %+v", rebuilt.Get(99))
	}
}
