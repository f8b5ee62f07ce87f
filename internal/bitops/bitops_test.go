// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitops

import (
	"bytes"
	"testing"
)

func TestXORInvolution(t *testing.T) {
	in := []byte{0x01, 0xFF, 0x42, 0x00}
	mid := XOR(in, 0x5A)
	out := XOR(mid, 0x5A)
	if !bytes.Equal(in, out) {
		t.Fatalf("xor not involutory: %x -> %x -> %x", in, mid, out)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	in := []byte{0x12, 0x34, 0x56, 0x78, 0x9A}
	for n := uint(0); n < 40; n++ {
		rotated := RotateRight(in, n)
		back := RotateLeft(rotated, n)
		if !bytes.Equal(in, back) {
			t.Fatalf("rotate(%d) round trip failed: %x -> %x -> %x", n, in, rotated, back)
		}
	}
}

func TestRotateRightByOneShiftsBit(t *testing.T) {
	in := []byte{0x80} // 1000 0000
	got := RotateRight(in, 1)
	want := []byte{0x40} // 0100 0000
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}
}
