// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package envelope implements the outermost save-file codec: the SHA-1
// integrity check, LZO1X framing, WSG+CRC header, and Huffman
// orchestration that together turn raw save bytes into the decoded
// player payload and back.
//
// Grounded directly on original_source/borderlands/savefile.py's
// unwrap_player_data/wrap_player_data, including the two spots that
// file itself flags as suspicious-but-load-bearing: the header's outer
// size/magic/version fields are always big-endian regardless of the
// configured endianness, and the LZO framing always goes through the
// 0xF0 literal-run sentinel (see lzo.Decompress's package doc).
package envelope

import (
	"crypto/sha1"
	"encoding/binary"
	"hash/crc32"

	"github.com/borderlands2/bl2save/bitstream"
	"github.com/borderlands2/bl2save/bl2err"
	"github.com/borderlands2/bl2save/huffman"
	"github.com/borderlands2/bl2save/lzo"
)

const (
	versionLittle = 2
	versionBig    = 0x02000000
)

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
	case *bl2err.CodecError:
		*err = ex
	default:
		panic(ex)
	}
}

// Decode authenticates, decompresses, and Huffman-decodes raw save
// bytes into the player protobuf payload.
func Decode(raw []byte) (player []byte, err error) {
	defer errRecover(&err)
	return decode(raw), nil
}

func decode(raw []byte) []byte {
	if len(raw) < 20 {
		panic(bl2err.NewTruncated("envelope"))
	}
	expected := raw[:20]
	rest := raw[20:]

	sum := sha1.Sum(rest)
	if !equalBytes(sum[:], expected) {
		panic(bl2err.NewBadSha1())
	}

	decompressed, err := lzo.Decompress(append([]byte{0xF0}, rest...))
	if err != nil {
		panic(err)
	}
	if len(decompressed) < 19 {
		panic(bl2err.NewTruncated("envelope"))
	}

	// decompressed[0:4] is outer_size, the length of everything from
	// the magic onward; the pipeline never needs it since the Huffman
	// stream is self-delimiting via inner_size.
	magic := string(decompressed[4:7])
	version := binary.BigEndian.Uint32(decompressed[7:11])
	if magic != "WSG" {
		panic(bl2err.NewTruncated("envelope"))
	}
	if version != versionLittle && version != versionBig {
		panic(bl2err.NewUnknownVersion(version))
	}

	order := byteOrderFor(version)
	crc := order.Uint32(decompressed[11:15])
	innerSize := order.Uint32(decompressed[15:19])

	r := bitstream.NewReader(decompressed[19:])
	tree := huffman.ParseTree(r)
	player := huffman.Decompress(r, tree, int(innerSize))

	if crc32.ChecksumIEEE(player) != crc {
		panic(bl2err.NewBadCrc())
	}
	return player
}

// Encode is the inverse of Decode, always writing the little-endian
// (version == 2) header form.
func Encode(player []byte) []byte {
	crc := crc32.ChecksumIEEE(player)

	tree := huffman.Build(player)
	w := bitstream.NewWriter()
	huffman.SerializeTree(w, tree)
	huffman.Compress(w, tree, player)
	huffmanBytes := append(w.Bytes(), 0, 0, 0, 0)

	header := make([]byte, 0, 15)
	header = appendBE32(header, uint32(len(huffmanBytes)+15))
	header = append(header, 'W', 'S', 'G')
	header = appendBE32(header, versionLittle)
	header = binary.LittleEndian.AppendUint32(header, crc)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(player)))

	payload := append(header, huffmanBytes...)
	_, compressed := lzo.Compress(payload)
	compressed = compressed[1:]

	sum := sha1.Sum(compressed)
	return append(sum[:], compressed...)
}

func byteOrderFor(version uint32) binary.ByteOrder {
	if version == versionLittle {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func appendBE32(out []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(out, v)
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
