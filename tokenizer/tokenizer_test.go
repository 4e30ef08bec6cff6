//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuneCounter(t *testing.T) {
	c := RuneCounter{}
	require.Equal(t, 0, c.Count(""))
	require.Equal(t, 5, c.Count("hello"))
	require.Equal(t, 4, c.Count("人工智能"))
	require.Equal(t, 11, c.Count("hello world"))
}

func TestCounterFunc(t *testing.T) {
	c := CounterFunc(func(text string) int {
		return len(strings.Fields(text))
	})
	require.Equal(t, 3, c.Count("one two three"))
	require.Equal(t, 0, c.Count(""))
}

func TestRuneCounter_Deterministic(t *testing.T) {
	c := RuneCounter{}
	text := strings.Repeat("mixed 文本 ", 100)
	require.Equal(t, c.Count(text), c.Count(text))
}
