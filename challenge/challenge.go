// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package challenge implements the challenge-block sub-codec: a small
// self-delimited format nested inside the player protobuf message (a
// u16-counted id dictionary followed by a u16-counted list of
// fixed-width records), plus the overflow repair the save pipeline
// applies to corrupted totals.
package challenge

import (
	"encoding/binary"

	"github.com/borderlands2/bl2save/bl2err"
	"github.com/borderlands2/bl2save/title"
)

// Record is one challenge entry. Name is populated on decode by looking
// up ID in the caller-supplied title.Spec.Challenges table, and is
// dropped again on encode.
type Record struct {
	ID            uint16
	TotalValue    uint32
	PreviousValue uint32
	Name          string
}

// overflowThreshold is the total_value at or above which a record is treated
// as corrupted and repaired against its title-supplied maximum.
const overflowThreshold = 2_000_000_000

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
	case *bl2err.CodecError:
		*err = ex
	default:
		panic(ex)
	}
}

// Decode parses a challenge block, naming each record from spec's
// challenge table. Totals are returned as stored; overflow repair is
// RepairOverflow's job.
func Decode(spec title.Spec, data []byte, order binary.ByteOrder) (records []Record, err error) {
	defer errRecover(&err)
	return decode(spec, data, order), nil
}

func decode(spec title.Spec, data []byte, order binary.ByteOrder) []Record {
	c := &cursor{data: data}

	countTotal := int(c.u16(order))
	for i := 0; i < countTotal; i++ {
		c.u16(order) // dictionary slice: ids only, not otherwise retained
	}

	countRecords := int(c.u16(order))
	records := make([]Record, 0, countRecords)
	for i := 0; i < countRecords; i++ {
		id := c.u16(order)
		total := c.u32(order)
		previous := c.u32(order)

		rec := Record{ID: id, TotalValue: total, PreviousValue: previous}
		if meta, known := spec.Challenges[id]; known {
			rec.Name = meta.Name
		}
		records = append(records, rec)
	}
	return records
}

// RepairOverflow replaces the total of every record whose total has
// crossed overflowThreshold with one past its title-supplied maximum.
// Records naming a challenge id the spec doesn't know about are left
// untouched. Called from the save pipeline's edit pass, not from
// Decode, so a plain decode/encode cycle never mutates data on its own.
func RepairOverflow(spec title.Spec, records []Record) {
	for i := range records {
		if records[i].TotalValue < overflowThreshold {
			continue
		}
		meta, known := spec.Challenges[records[i].ID]
		if !known {
			continue
		}
		records[i].TotalValue = meta.Max + 1
	}
}

// Encode writes records back into a challenge block. It drops each
// record's Name, emits the records in the order given, and rebuilds the
// leading id dictionary from that same order.
func Encode(records []Record, order binary.ByteOrder) []byte {
	var out []byte
	out = appendU16(out, order, uint16(len(records)))
	for _, r := range records {
		out = appendU16(out, order, r.ID)
	}
	out = appendU16(out, order, uint16(len(records)))
	for _, r := range records {
		out = appendU16(out, order, r.ID)
		out = appendU32(out, order, r.TotalValue)
		out = appendU32(out, order, r.PreviousValue)
	}
	return out
}

type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) u16(order binary.ByteOrder) uint16 {
	if c.pos+2 > len(c.data) {
		panic(bl2err.NewTruncated("challenge"))
	}
	v := order.Uint16(c.data[c.pos:])
	c.pos += 2
	return v
}

func (c *cursor) u32(order binary.ByteOrder) uint32 {
	if c.pos+4 > len(c.data) {
		panic(bl2err.NewTruncated("challenge"))
	}
	v := order.Uint32(c.data[c.pos:])
	c.pos += 4
	return v
}

func appendU16(out []byte, order binary.ByteOrder, v uint16) []byte {
	var buf [2]byte
	order.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func appendU32(out []byte, order binary.ByteOrder, v uint32) []byte {
	var buf [4]byte
	order.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}
