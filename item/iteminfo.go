// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package item

import (
	"encoding/base64"

	"github.com/borderlands2/bl2save/bl2err"
	"github.com/borderlands2/bl2save/title"
)

// HeaderValue is a (lib, asset) pair, the split form of a raw header or
// part field.
type HeaderValue struct {
	Lib   int
	Asset int
}

// Info is the human-readable decomposition of an item/weapon record:
// its set, level, header fields (type/balance/manufacturer), and part
// list, in addition to the raw base64 blob it was unwrapped from.
type Info struct {
	IsWeapon int
	Key      int32
	Set      int
	Level    [2]int // (grade_index, game_stage)
	Headers  map[string]HeaderValue
	Parts    []*HeaderValue
	Base64   string
}

// IsPseudoItem reports whether values represent the title's sentinel
// "not a real item" placeholder record: set == 255 with every other
// present field zero.
func IsPseudoItem(values Fields) bool {
	if len(values) == 0 || values[0] == nil || *values[0] != 255 {
		return false
	}
	for _, v := range values[1:] {
		if v != nil && *v != 0 {
			return false
		}
	}
	return true
}

// UnwrapInfo unwraps raw and decomposes it into an Info tree.
func UnwrapInfo(spec title.Spec, raw []byte) (Info, error) {
	isWeapon, values, key, err := Unwrap(spec, raw)
	if err != nil {
		return Info{}, err
	}
	if len(values) < 6 {
		return Info{}, bl2err.NewInvalidItem("item has fewer than 6 structural fields")
	}

	info := Info{
		IsWeapon: isWeapon,
		Key:      key,
		Set:      deref(values[0]),
		Level:    [2]int{deref(values[4]), deref(values[5])},
		Headers:  make(map[string]HeaderValue),
		Base64:   base64.StdEncoding.EncodeToString(raw),
	}

	headerSizes := spec.ItemHeaderSizes[isWeapon]
	for i, hf := range headerSizes {
		x := values[1+i]
		if x == nil {
			return Info{}, bl2err.NewInvalidItem("item header field missing")
		}
		info.Headers[hf.Name] = split(*x, hf.Bits)
	}

	partBits := 10 + isWeapon
	for _, x := range values[6:] {
		if x == nil {
			info.Parts = append(info.Parts, nil)
			continue
		}
		v := split(*x, partBits)
		info.Parts = append(info.Parts, &v)
	}
	return info, nil
}

// WrapInfo is the inverse of UnwrapInfo.
func WrapInfo(spec title.Spec, info Info) []byte {
	values := make(Fields, 0, 6+len(info.Parts))
	set := info.Set
	values = append(values, &set)

	for _, hf := range spec.ItemHeaderSizes[info.IsWeapon] {
		hv := info.Headers[hf.Name]
		combined := join(hv, hf.Bits)
		values = append(values, &combined)
	}
	grade, stage := info.Level[0], info.Level[1]
	values = append(values, &grade, &stage)

	partBits := 10 + info.IsWeapon
	for _, p := range info.Parts {
		if p == nil {
			values = append(values, nil)
			continue
		}
		combined := join(*p, partBits)
		values = append(values, &combined)
	}

	return Wrap(spec, info.IsWeapon, values, info.Key)
}

func split(x, bits int) HeaderValue {
	lib := x >> uint(bits)
	asset := x &^ (lib << uint(bits))
	return HeaderValue{Lib: lib, Asset: asset}
}

func join(hv HeaderValue, bits int) int {
	return (hv.Lib << uint(bits)) | hv.Asset
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
