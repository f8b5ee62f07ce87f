// Copyright 2026, the bl2save authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package item

import (
	"github.com/borderlands2/bl2save/protobuf"
	"github.com/borderlands2/bl2save/title"
)

// UnwrapBlackMarket decodes a black market's packed SDU-level list into
// a map keyed by spec's ordered BlackMarketKeys.
func UnwrapBlackMarket(spec title.Spec, value []byte) (map[string]uint64, error) {
	levels, err := protobuf.ReadRepeatedPacked(value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(levels))
	for i, level := range levels {
		if i >= len(spec.BlackMarketKeys) {
			break
		}
		out[spec.BlackMarketKeys[i]] = level
	}
	return out, nil
}

// WrapBlackMarket is the inverse of UnwrapBlackMarket: it orders value
// by spec.BlackMarketKeys (keys beyond len(value) are omitted) and
// packs the result back into varints.
func WrapBlackMarket(spec title.Spec, value map[string]uint64) []byte {
	levels := make([]uint64, 0, len(value))
	for _, key := range spec.BlackMarketKeys {
		if len(levels) >= len(value) {
			break
		}
		levels = append(levels, value[key])
	}
	return protobuf.WriteRepeatedPacked(levels)
}
