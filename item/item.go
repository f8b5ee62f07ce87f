// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package item implements the per-item obfuscation and bit-packed
// field-list codec: the XOR+rotate wrapper around an item's body, and
// the variable-width pack/unpack of its ordered field list.
//
// Ported directly from original_source/borderlands/savefile.py's
// pack_item_values/unpack_item_values/wrap_item/unwrap_item, which is
// the only place in the retrieval pack that specifies this format's bit
// arithmetic exactly. Obfuscation helpers come from internal/bitops.
package item

import (
	"encoding/binary"

	"github.com/borderlands2/bl2save/bl2err"
	"github.com/borderlands2/bl2save/internal/bitops"
	"github.com/borderlands2/bl2save/title"
)

// Fields is the decoded ordered field list of an item. Values beyond
// the packed data's length are nil (absent, not zero), per the pack/
// unpack contract.
type Fields []*int

// Pack serializes values against spec's item-size table for isWeapon,
// stopping at the first nil value. The final byte, if only partially
// filled, has its unused high bits padded with ones.
func Pack(spec title.Spec, isWeapon int, values Fields) []byte {
	sizes := spec.ItemSizes[isWeapon]
	buf := make([]byte, 32)
	i := 0
	for idx, size := range sizes {
		if idx >= len(values) || values[idx] == nil {
			break
		}
		v := uint64(*values[idx]) << uint(i&7)
		j := i >> 3
		for v != 0 {
			buf[j] |= byte(v)
			v >>= 8
			j++
		}
		i += size
	}
	if i&7 != 0 {
		buf[i>>3] |= byte(0xFF << uint(i&7))
	}
	return buf[:(i+7)>>3]
}

// Unpack is the inverse of Pack: it reads spec's item-size table for
// isWeapon against data, returning nil for any field whose bit range
// extends past the end of data.
func Unpack(spec title.Spec, isWeapon int, data []byte) Fields {
	sizes := spec.ItemSizes[isWeapon]
	padded := append([]byte{' '}, data...)
	end := len(padded) * 8
	i := 8
	result := make(Fields, 0, len(sizes))
	for _, size := range sizes {
		j := i + size
		if j > end {
			result = append(result, nil)
			i = j
			continue
		}
		var v uint64
		top := j >> 3
		if top >= len(padded) {
			// j == end: mirrors Python's negative-step slice clamping
			// its start index down to len(data)-1 rather than indexing
			// past the end.
			top = len(padded) - 1
		}
		for k := top; k >= (i >> 3); k-- {
			v = v<<8 | uint64(padded[k])
		}
		masked := (v >> uint(i&7)) &^ (uint64(0xFF) << uint(size))
		val := int(masked)
		result = append(result, &val)
		i = j
	}
	return result
}

// Header is the fixed 5-byte prefix of every item/weapon record.
type Header struct {
	IsWeapon int
	Key      int32
}

// Wrap builds a full item record: header, checksum, then the obfuscated
// packed body.
func Wrap(spec title.Spec, isWeapon int, values Fields, key int32) []byte {
	body := Pack(spec, isWeapon, values)
	header := make([]byte, 5)
	header[0] = byte(isWeapon<<7) | spec.ItemStructVersion
	binary.BigEndian.PutUint32(header[1:], uint32(key))
	return append(header, createBody(body, key)...)
}

// Unwrap reverses Wrap, returning the is_weapon bit, the decoded field
// list, and the key used to obfuscate the record.
func Unwrap(spec title.Spec, data []byte) (isWeapon int, values Fields, key int32, err error) {
	defer func() {
		switch ex := recover().(type) {
		case nil:
		case *bl2err.CodecError:
			err = ex
		default:
			panic(ex)
		}
	}()
	if len(data) < 5 {
		panic(bl2err.NewInvalidItem("item record shorter than header"))
	}
	versionType := data[0]
	key = int32(binary.BigEndian.Uint32(data[1:5]))
	isWeapon = int(versionType >> 7)

	raw := bitops.RotateRight(bitops.XOR(data[5:], byte(key>>5)), uint(key&31))
	if len(raw) < 2 {
		panic(bl2err.NewInvalidItem("item body shorter than checksum"))
	}
	values = Unpack(spec, isWeapon, raw[2:])
	return isWeapon, values, key, nil
}

// createBody prepends the two-byte fold16 checksum to payload, then
// applies the obfuscation wrap (left-rotate then XOR) that Unwrap's
// XOR-then-right-rotate inverts.
func createBody(payload []byte, key int32) []byte {
	checksum := fold16(payload)
	body := make([]byte, 0, len(payload)+2)
	body = append(body, byte(checksum>>8), byte(checksum))
	body = append(body, payload...)
	rotated := bitops.RotateLeft(body, uint(key&31))
	return bitops.XOR(rotated, byte(key>>5))
}

// fold16 is the 16-bit XOR fold of data: data is split into big-endian
// 16-bit words (odd trailing byte treated as the high byte of a final
// word) and XORed together.
func fold16(data []byte) uint16 {
	var sum uint16
	for i := 0; i+1 < len(data); i += 2 {
		sum ^= uint16(data[i])<<8 | uint16(data[i+1])
	}
	if len(data)%2 == 1 {
		sum ^= uint16(data[len(data)-1]) << 8
	}
	return sum
}
