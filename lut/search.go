// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lut

// The edge-end search fetches two horizontally adjacent edge pairs with a
// single bilinear sample placed a quarter texel into the first pair and an
// eighth of a texel off the pattern row. The fetched value is therefore a
// fixed weighting of four edge bits:
//
//	value = (e0 + 3*e1 + 7*e2 + 21*e3) / 32
//
// All 16 combinations produce distinct multiples of 1/32, so the packed
// value can be decoded exactly. The search table maps such a value pair
// (the pair being walked and the pair above it) to how many texels the walk
// may still advance, 0 to 2, stored as multiples of 127/255 so the kernel
// can rescale with a single multiply.

// deltaLeft is the allowed advance when searching toward negative x or y.
func deltaLeft(left, top [4]int) int {
	d := 0
	if top[3] == 1 {
		d++
	}
	if d == 1 && top[2] == 1 && left[1] != 1 && left[3] != 1 {
		d++
	}
	return d
}

// deltaRight is the allowed advance when searching toward positive x or y.
// Unlike deltaLeft the very first step already demands no crossing edges.
func deltaRight(left, top [4]int) int {
	d := 0
	if top[3] == 1 && left[1] != 1 && left[3] != 1 {
		d++
	}
	if d == 1 && top[2] == 1 && left[0] != 1 && left[2] != 1 {
		d++
	}
	return d
}

// generateSearch builds the packed search table. The native grid is 66x33
// (33 quantized values per axis, left and right halves side by side); the
// stored table crops it to 64x16, keeping the rows reachable by the lookup
// scale and bias. Rows are flipped so that row 0 holds the strongest
// continuation value.
func generateSearch() []float32 {
	// The quantized key value*32 is exact for every packed fetch value.
	combos := make(map[int][4]int, 16)
	for bits := 0; bits < 16; bits++ {
		e := [4]int{bits & 1, (bits >> 1) & 1, (bits >> 2) & 1, (bits >> 3) & 1}
		combos[e[0]+3*e[1]+7*e[2]+21*e[3]] = e
	}

	const halfWidth = searchNativeWidth / 2

	tab := make([]float32, SearchWidth*SearchHeight)
	for y := 0; y < SearchHeight; y++ {
		top, ok := combos[searchNativeHeight-1-y]
		if !ok {
			continue
		}
		for x := 0; x < halfWidth; x++ {
			left, ok := combos[x]
			if !ok {
				continue
			}
			tab[y*SearchWidth+x] = searchValue(deltaLeft(left, top))
		}
		for x := 0; x+halfWidth < SearchWidth; x++ {
			left, ok := combos[x]
			if !ok {
				continue
			}
			tab[y*SearchWidth+x+halfWidth] = searchValue(deltaRight(left, top))
		}
	}
	return tab
}

func searchValue(delta int) float32 {
	return float32(127*delta) / 255.0
}
