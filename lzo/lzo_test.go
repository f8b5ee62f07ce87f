// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lzo

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestRoundTripEmpty(t *testing.T) {
	_, compressed := Compress(nil)
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %x want empty", out)
	}
}

func TestRoundTripLiteralOnly(t *testing.T) {
	in := []byte("the quick brown fox jumps over a lazy dog")
	_, compressed := Compress(in)
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("got %q want %q", out, in)
	}
}

func TestRoundTripRepetitive(t *testing.T) {
	in := bytes.Repeat([]byte("abcabcabcabcabcabcd"), 500)
	_, compressed := Compress(in)
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("round trip mismatch, len got %d want %d", len(out), len(in))
	}
	if len(compressed) >= len(in) {
		t.Fatalf("expected compression to shrink a repetitive buffer: %d -> %d", len(in), len(compressed))
	}
}

func TestRoundTripRandomLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(4000)
		in := make([]byte, n)
		// mix of random bytes and repeated runs so both literal and
		// match paths get exercised.
		for i := range in {
			if i > 8 && rng.Intn(4) == 0 {
				in[i] = in[i-rng.Intn(8)-1]
			} else {
				in[i] = byte(rng.Intn(256))
			}
		}
		_, compressed := Compress(in)
		out, err := Decompress(compressed)
		if err != nil {
			t.Fatalf("trial %d (n=%d): decompress: %v", trial, n, err)
		}
		if !bytes.Equal(in, out) {
			t.Fatalf("trial %d (n=%d): round trip mismatch", trial, n)
		}
	}
}

func TestRoundTripLongMatchDistance(t *testing.T) {
	prefix := make([]byte, 20000)
	rng := rand.New(rand.NewSource(4))
	for i := range prefix {
		prefix[i] = byte(rng.Intn(256))
	}
	in := append(append([]byte(nil), prefix...), prefix...)
	_, compressed := Compress(in)
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("round trip mismatch over long-distance match")
	}
}

func TestDecompressRejectsMissingSentinel(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x01, 0x02})
	if err == nil {
		t.Fatal("expected error for stream missing the initial literal sentinel")
	}
}

func TestDecompressRejectsTruncatedStream(t *testing.T) {
	_, compressed := Compress([]byte("hello world, this is a longer literal run"))
	_, err := Decompress(compressed[:len(compressed)-5])
	if err == nil {
		t.Fatal("expected error for truncated stream")
	}
}
