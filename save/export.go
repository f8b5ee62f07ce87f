// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package save

import (
	"encoding/base64"

	"github.com/borderlands2/bl2save/item"
	"github.com/borderlands2/bl2save/protobuf"
)

// ExportedItem is one printable item/weapon code, re-keyed to key 0 so
// it imports cleanly into any save.
type ExportedItem struct {
	Category string // "Bank", "Items", or "Weapons"
	Code     string // opcode prefix + base64 blob
}

// exportCategories walks in field-number order, mirroring the order the
// original editor's item-export pass visits bank, items, then weapons.
var exportCategories = []struct {
	field    uint32
	category string
}{
	{FieldBank, "Bank"},
	{FieldItems, "Items"},
	{FieldWeapons, "Weapons"},
}

// ExportItems walks fields 41/53/54, unwraps each raw item, re-packs it
// with key 0, and returns a base64 code for each real item. Pseudo-items
// (item.IsPseudoItem) are skipped and counted separately so the caller
// can report how many were excluded.
func (p *Pipeline) ExportItems(msg *protobuf.Message, opcode string) (items []ExportedItem, skippedPseudo int, err error) {
	for _, cat := range exportCategories {
		for _, occ := range msg.Get(cat.field) {
			raw, ok := occ.Value.([]byte)
			if !ok {
				continue
			}
			isWeapon, values, _, unwrapErr := item.Unwrap(p.Spec, raw)
			if unwrapErr != nil {
				return nil, skippedPseudo, unwrapErr
			}
			if item.IsPseudoItem(values) {
				skippedPseudo++
				continue
			}
			rewrapped := item.Wrap(p.Spec, isWeapon, values, 0)
			items = append(items, ExportedItem{
				Category: cat.category,
				Code:     opcode + base64.StdEncoding.EncodeToString(rewrapped),
			})
		}
	}
	return items, skippedPseudo, nil
}
