// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package title holds the per-game data that parameterizes the codec
// stack: item field widths, black-market SDU ordering, and challenge
// metadata. Where the original Python kept a Config base class and one
// subclass per title, this package follows the generalization the spec
// calls for directly: a single Spec value, constructed once per title
// rather than through inheritance.
package title

// Spec is the title-specific configuration the item and challenge codecs
// and the save pipeline take as a parameter instead of hardcoding.
type Spec struct {
	// ItemStructVersion is the fixed struct_version byte stamped into
	// every item/weapon header.
	ItemStructVersion uint8

	// ItemSizes[is_weapon] gives the bit width of each of the up to 17
	// ordered fields in an item record.
	ItemSizes [2][]int

	// ItemHeaderSizes[is_weapon] gives the (name, bits) split for the
	// first three fields after "set" (type, balance, manufacturer).
	ItemHeaderSizes [2][]HeaderField

	// BlackMarketKeys orders the black market's packed SDU list.
	BlackMarketKeys []string

	// Challenges maps a challenge id to its metadata.
	Challenges map[uint16]Challenge
}

// HeaderField names one of an item's header sub-fields and the bit
// width its (lib, asset) pair splits at.
type HeaderField struct {
	Name string
	Bits int
}

// Challenge is the caller-supplied metadata the challenge codec uses to
// name records and repair overflowed totals.
type Challenge struct {
	Name string
	Max  uint32
}

// BL2 returns the title.Spec for Borderlands 2, with field widths
// ported from the original save editor's BaseApp.item_sizes /
// item_header_sizes tables.
func BL2() Spec {
	return Spec{
		ItemStructVersion: 7,
		ItemSizes: [2][]int{
			{8, 17, 20, 11, 7, 7, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16},
			{8, 13, 20, 11, 7, 7, 17, 17, 17, 17, 17, 17, 17, 17, 17, 17, 17},
		},
		ItemHeaderSizes: [2][]HeaderField{
			{{Name: "type", Bits: 8}, {Name: "balance", Bits: 10}, {Name: "manufacturer", Bits: 7}},
			{{Name: "type", Bits: 6}, {Name: "balance", Bits: 10}, {Name: "manufacturer", Bits: 7}},
		},
		BlackMarketKeys: []string{
			"rifle", "pistol", "launcher", "shotgun", "smg", "sniper", "grenade", "backpack", "bank",
		},
		Challenges: defaultBL2Challenges(),
	}
}

// defaultBL2Challenges supplies a small illustrative set of challenge
// metadata. The original title's full challenge dictionary (hundreds of
// entries keyed by an internal id) lives in caller-owned configuration
// in the real editor; this default set is enough to exercise the
// challenge codec's overflow-repair path without hardcoding the full
// in-game list.
func defaultBL2Challenges() map[uint16]Challenge {
	return map[uint16]Challenge{
		1: {Name: "Enemies Killed", Max: 4_294_967_295},
		2: {Name: "Damage Dealt", Max: 2_000_000_000},
		3: {Name: "Headshots", Max: 999_999_999},
		4: {Name: "Money Earned", Max: 2_147_483_647},
		5: {Name: "Vehicles Destroyed", Max: 999_999},
	}
}
