//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package encoding

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplitHalf(t *testing.T) {
	tests := []struct {
		in          string
		first, rest string
	}{
		{"", "", ""},
		{"a", "a", ""},
		{"ab", "a", "b"},
		{"abc", "ab", "c"},
		{"人工智能", "人工", "智能"},
		{"人工智", "人工", "智"},
	}
	for _, tt := range tests {
		first, rest := SplitHalf(tt.in)
		require.Equal(t, tt.first, first, "input %q", tt.in)
		require.Equal(t, tt.rest, rest, "input %q", tt.in)
		require.True(t, utf8.ValidString(first), "input %q", tt.in)
		require.True(t, utf8.ValidString(rest), "input %q", tt.in)
	}
}
