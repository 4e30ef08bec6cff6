//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package tokenizer defines the token-counting collaborator used by the
// splitter and metadata fuser for length accounting and split-size
// decisions.
package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultModel is the tokenizer model used when none is specified.
const DefaultModel = "gpt-4o"

// Counter counts tokens in text. Implementations must be deterministic for
// a fixed configuration.
type Counter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
}

// CounterFunc adapts a plain function to the Counter interface.
type CounterFunc func(text string) int

// Count implements the Counter interface.
func (f CounterFunc) Count(text string) int {
	return f(text)
}

// RuneCounter counts Unicode code points. It is the dependency-free
// fallback counter and the default counter in tests.
type RuneCounter struct{}

// Count implements the Counter interface.
func (RuneCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// TiktokenCounter counts tokens using a tiktoken BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a counter for the given model name
// (e.g. "gpt-4o"). An empty model selects DefaultModel.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding for model %q: %w", model, err)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count implements the Counter interface.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}
