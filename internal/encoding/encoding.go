//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package encoding provides rune-safe text helpers shared by the splitter.
package encoding

// SplitHalf splits s at the middle rune boundary, never cutting inside a
// multi-byte rune. The first half receives the extra rune when the length
// is odd. Strings of one rune or less are returned unsplit in the first
// half.
func SplitHalf(s string) (string, string) {
	runes := []rune(s)
	if len(runes) <= 1 {
		return s, ""
	}
	mid := (len(runes) + 1) / 2
	return string(runes[:mid]), string(runes[mid:])
}
