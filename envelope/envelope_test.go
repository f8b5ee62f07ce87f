// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package envelope

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"testing"

	"github.com/borderlands2/bl2save/bl2err"
	"github.com/borderlands2/bl2save/lzo"
)

func samplePlayer() []byte {
	return bytes.Repeat([]byte("player-payload-bytes-for-envelope-round-trip-test "), 40)
}

func TestRoundTrip(t *testing.T) {
	player := samplePlayer()
	raw := Encode(player)
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, player) {
		t.Fatalf("round trip mismatch: got %d bytes want %d bytes", len(got), len(player))
	}
}

func TestRoundTripSmallPlayer(t *testing.T) {
	player := []byte("x")
	raw := Encode(player)
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, player) {
		t.Fatalf("got %q want %q", got, player)
	}
}

func TestDecodeRejectsBadSha1(t *testing.T) {
	raw := Encode(samplePlayer())
	raw[0] ^= 0xFF
	_, err := Decode(raw)
	if err == nil {
		t.Fatal("expected sha1 mismatch error")
	}
}

func TestDecodeRejectsBadCrc(t *testing.T) {
	player := samplePlayer()
	raw := Encode(player)

	// Unpack the LZO layer, flip one bit of the header's CRC word, then
	// re-pack and re-sign it, so decode gets past the sha1 check and the
	// LZO framing and fails on the CRC check.
	decompressed, err := lzo.Decompress(append([]byte{0xF0}, raw[20:]...))
	if err != nil {
		t.Fatalf("lzo.Decompress: %v", err)
	}
	decompressed[11] ^= 0x01
	_, recompressed := lzo.Compress(decompressed)
	corrupted := recompressed[1:]
	sum := sha1.Sum(corrupted)

	_, err = Decode(append(sum[:], corrupted...))
	if !errors.Is(err, bl2err.NewBadCrc()) {
		t.Fatalf("got %v, want a crc32 mismatch error", err)
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected truncation error")
	}
}
