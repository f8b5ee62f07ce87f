// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package save is the top-level orchestrator: envelope decode/encode,
// protobuf parse/serialize, and the item-export and edit-application
// passes the CLI (or any other caller) drives against a decoded player
// message.
//
// Grounded on original_source/borderlands/savefile.py's BaseApp, whose
// unwrap_player_data/wrap_player_data/_get_rich/modify_save methods this
// package's Decode/Encode/ApplyEdits generalize: where BaseApp hardcodes
// one title's money/eridium/seraph/torgue offsets and challenge table,
// Pipeline takes a title.Spec and challenge/edit tables as parameters.
package save

import (
	"encoding/binary"

	"github.com/borderlands2/bl2save/bl2err"
	"github.com/borderlands2/bl2save/challenge"
	"github.com/borderlands2/bl2save/envelope"
	"github.com/borderlands2/bl2save/protobuf"
	"github.com/borderlands2/bl2save/title"
)

// Fields inside the player message that the item/challenge codecs and
// the edit pass reach into directly (the schema the rest of the
// protobuf tree is organized by is an external collaborator; these few
// field numbers are load-bearing to the pipeline itself).
const (
	FieldCurrency       = 6
	FieldUnlockSlots    = 23
	FieldUnlockUpgrades = 24
	FieldChallenges     = 15
	FieldBank           = 41
	FieldItems          = 53
	FieldWeapons        = 54
)

// Meta carries the information Decode extracts from the envelope that
// Encode needs back to reconstruct a byte-identical framing (today,
// just the byte order the challenge block and any other endianness-
// sensitive sub-codec should use).
type Meta struct {
	ByteOrder binary.ByteOrder
}

// Pipeline binds a title.Spec for the duration of a decode/encode/
// export/edit cycle.
type Pipeline struct {
	Spec title.Spec
}

// New returns a Pipeline for the given title configuration.
func New(spec title.Spec) *Pipeline {
	return &Pipeline{Spec: spec}
}

// Decode authenticates and unpacks raw save bytes into a protobuf
// Message. The envelope's configured endianness is always little (see
// envelope.Encode); Meta is returned for symmetry with callers that
// want to branch on it, and because a future title might vary it.
func (p *Pipeline) Decode(raw []byte) (*protobuf.Message, Meta, error) {
	player, err := envelope.Decode(raw)
	if err != nil {
		return nil, Meta{}, err
	}
	msg, err := protobuf.ReadMessage(player)
	if err != nil {
		return nil, Meta{}, err
	}
	return msg, Meta{ByteOrder: binary.LittleEndian}, nil
}

// Encode is the inverse of Decode.
func (p *Pipeline) Encode(msg *protobuf.Message) []byte {
	player := protobuf.WriteMessage(msg)
	return envelope.Encode(player)
}

// currencyFields are the positions within field 6's first occurrence
// value list that ApplyEdits may overwrite: money, eridium, seraph
// crystals, torgue tokens.
var currencyFields = map[string]int{
	"money":   0,
	"eridium": 1,
	"seraph":  2,
	"torgue":  4,
}

// Edits describes the mutations ApplyEdits may perform. Zero-value
// fields (nil pointers / false) mean "leave as-is".
type Edits struct {
	Money          *int64
	Eridium        *int64
	Seraph         *int64
	Torgue         *int64
	UnlockSlots    bool
	UnlockUpgrades bool
}

// ApplyEdits mutates msg's currency scalars and unlock flags as
// requested, and always runs challenge-overflow repair against the
// field-15 challenge block (matching the original's modify_save, which
// ran repair unconditionally on every edit pass).
func (p *Pipeline) ApplyEdits(msg *protobuf.Message, order binary.ByteOrder, edits Edits) error {
	if err := p.applyCurrency(msg, edits); err != nil {
		return err
	}
	p.applyUnlockFlags(msg, edits)
	return p.repairChallenges(msg, order)
}

func (p *Pipeline) applyCurrency(msg *protobuf.Message, edits Edits) error {
	want := map[string]*int64{
		"money":   edits.Money,
		"eridium": edits.Eridium,
		"seraph":  edits.Seraph,
		"torgue":  edits.Torgue,
	}
	anySet := false
	for _, v := range want {
		if v != nil {
			anySet = true
		}
	}
	if !anySet {
		return nil
	}

	occs := msg.Get(FieldCurrency)
	if len(occs) == 0 {
		return bl2err.NewSchemaMismatch(FieldCurrency, "packed currency list", "absent")
	}
	raw, ok := occs[0].Value.([]byte)
	if !ok {
		return bl2err.NewSchemaMismatch(FieldCurrency, "length-delimited", "other")
	}
	values, err := protobuf.ReadRepeatedPacked(raw)
	if err != nil {
		return err
	}

	for name, idx := range currencyFields {
		v := want[name]
		if v == nil {
			continue
		}
		if idx >= len(values) {
			return bl2err.NewSchemaMismatch(FieldCurrency, "currency list entry", "absent")
		}
		values[idx] = uint64(*v)
	}

	occs[0] = protobuf.Occurrence{WireType: protobuf.WireBytes, Value: protobuf.WriteRepeatedPacked(values)}
	msg.Set(FieldCurrency, occs)
	return nil
}

func (p *Pipeline) applyUnlockFlags(msg *protobuf.Message, edits Edits) {
	if edits.UnlockSlots {
		msg.Set(FieldUnlockSlots, []protobuf.Occurrence{{WireType: protobuf.WireBytes, Value: []byte{0x01}}})
	}
	if edits.UnlockUpgrades {
		msg.Set(FieldUnlockUpgrades, []protobuf.Occurrence{{WireType: protobuf.WireBytes, Value: []byte{0x01}}})
	}
}

func (p *Pipeline) repairChallenges(msg *protobuf.Message, order binary.ByteOrder) error {
	occs := msg.Get(FieldChallenges)
	if len(occs) == 0 {
		return nil
	}
	raw, ok := occs[0].Value.([]byte)
	if !ok {
		return bl2err.NewSchemaMismatch(FieldChallenges, "length-delimited", "other")
	}
	records, err := challenge.Decode(p.Spec, raw, order)
	if err != nil {
		return err
	}
	challenge.RepairOverflow(p.Spec, records)
	occs[0] = protobuf.Occurrence{WireType: protobuf.WireBytes, Value: challenge.Encode(records, order)}
	msg.Set(FieldChallenges, occs)
	return nil
}
