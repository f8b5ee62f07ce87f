// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lzo implements the LZO1X decompressor and an LZO1X-1
// compressor for the byte stream the envelope codec wraps.
//
// The token shapes below (M2/M3/M4 matches, zero-extended run lengths)
// are ported from the pack's LZO1X reference decompressor
// (other_examples: WoozyMasta/lzo, decompress.go) and re-targeted at a
// growable output buffer, since this codec's caller (the envelope) does
// not know the decompressed length up front the way that reference's
// fixed-OutLen API assumes.
//
// One deliberate divergence from that reference: the very first token
// of a stream is always read as an "extended literal run" regardless of
// its byte value, with the stream's leading byte pinned to the sentinel
// 0xF0. This lets the envelope codec discard the compressor's true
// first output byte and splice in a constant 0xF0 on the way back in
// (see envelope.Decode/Encode and spec.md §4.B/§4.G) without losing any
// information, because the real length always follows as a sequence of
// 0xFF-continuation bytes rather than being encoded in the opcode itself
// — unlike the zero-extension scheme the rest of the format uses, this
// scheme can represent a run of length zero.
package lzo

import "github.com/borderlands2/bl2save/bl2err"

const (
	markerM2 = 0x40
	markerM3 = 0x20
	markerM4 = 0x10

	initialLiteralSentinel = 0xF0
)

// Decompress decodes an LZO1X stream produced by Compress (or, for the
// envelope's use, a stream whose first byte has been forced to the
// initialLiteralSentinel). The output grows until the stream's
// terminator token (0x11 0x00 0x00) is reached.
func Decompress(src []byte) (out []byte, err error) {
	defer errRecover(&err)
	return decompress(src), nil
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

func decompress(src []byte) []byte {
	if len(src) == 0 {
		panic(bl2err.NewTruncated("lzo"))
	}

	var out []byte
	inPos := 0
	state := 0

	readByte := func() byte {
		if inPos >= len(src) {
			panic(bl2err.NewTruncated("lzo"))
		}
		b := src[inPos]
		inPos++
		return b
	}
	readLE16 := func() int {
		lo := int(readByte())
		hi := int(readByte())
		return lo | hi<<8
	}
	copyLiteral := func(n int) {
		if inPos+n > len(src) {
			panic(bl2err.NewTruncated("lzo"))
		}
		out = append(out, src[inPos:inPos+n]...)
		inPos += n
	}
	copyMatch := func(dist, length int) {
		start := len(out) - dist
		if start < 0 {
			panic(bl2err.NewTruncated("lzo"))
		}
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}
	readExtendedLen := func(base int) int {
		zeros := 0
		for {
			b := readByte()
			if b != 0 {
				return base + zeros*255 + int(b)
			}
			zeros++
		}
	}

	first := readByte()
	if first != initialLiteralSentinel {
		panic(bl2err.NewTruncated("lzo"))
	}
	n := 0
	for {
		b := int(readByte())
		n += b
		if b != 255 {
			break
		}
	}
	copyLiteral(n)
	if n >= 4 {
		state = 4
	} else {
		state = n
	}

	for {
		inst := int(readByte())
		var nextState int

		switch {
		case inst >= markerM2:
			b := int(readByte())
			dist := (b << 3) + ((inst >> 2) & 0x7) + 1
			length := (inst >> 5) + 1
			nextState = inst & 0x03
			copyMatch(dist, length)

		case inst >= markerM3:
			length := (inst & 0x1f) + 2
			if length == 2 {
				length = readExtendedLen(31) + 2
			}
			v16 := readLE16()
			dist := (v16 >> 2) + 1
			nextState = v16 & 0x03
			copyMatch(dist, length)

		case inst >= markerM4:
			length := (inst & 0x7) + 2
			if length == 2 {
				length = readExtendedLen(7) + 2
			}
			v16 := readLE16()
			baseDist := ((inst & 0x8) << 11) + (v16 >> 2)
			if baseDist == 0 {
				if length != 3 {
					panic(bl2err.NewTruncated("lzo"))
				}
				return out
			}
			dist := baseDist + 0x4000
			nextState = v16 & 0x03
			copyMatch(dist, length)

		default:
			if state == 0 {
				runLen := inst + 3
				if runLen == 3 {
					runLen = readExtendedLen(15) + 3
				}
				copyLiteral(runLen)
				state = 4
				continue
			}

			tail := int(readByte())
			if state != 4 {
				dist := (inst >> 2) + (tail << 2) + 1
				copyMatch(dist, 2)
			} else {
				dist := 0x0800 + 1 + (inst >> 2) + (tail << 2)
				copyMatch(dist, 3)
			}
			nextState = inst & 0x03
		}

		if nextState > 0 {
			copyLiteral(nextState)
		}
		state = nextState
	}
}
