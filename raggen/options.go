//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package raggen

import (
	"time"

	"trpc.group/trpc-go/trpc-raggen-go/metadata"
	"trpc.group/trpc-go/trpc-raggen-go/normalizer"
	"trpc.group/trpc-go/trpc-raggen-go/tokenizer"
)

// Defaults for the generator configuration.
const (
	// DefaultChunkSize is the default maximum chunk length in tokens.
	DefaultChunkSize = 256
	// DefaultChunkOverlap is the default token overlap between chunks.
	DefaultChunkOverlap = 30
	// DefaultMaxHeadingLevel is the default heading-level clamp.
	DefaultMaxHeadingLevel = 3
	// DefaultParallelism is the default number of documents processed
	// concurrently by ProcessBatch.
	DefaultParallelism = 1
)

// config collects the generator configuration assembled from options.
type config struct {
	cacheDir        string
	chunkSize       int
	chunkOverlap    int
	maxHeadingLevel int
	preserveTables  bool
	corrector       normalizer.Corrector
	correctAttempts int
	correctBackoff  []time.Duration
	template        string
	embedMeta       bool
	fieldNames      map[string]string
	placement       metadata.Placement
	counter         tokenizer.Counter
	tokenizerModel  string
	parallelism     int
}

// defaultConfig returns the configuration used when no options are given.
func defaultConfig() *config {
	return &config{
		chunkSize:       DefaultChunkSize,
		chunkOverlap:    DefaultChunkOverlap,
		maxHeadingLevel: DefaultMaxHeadingLevel,
		preserveTables:  true,
		correctAttempts: normalizer.DefaultMaxAttempts,
		embedMeta:       true,
		placement:       metadata.PlacementBefore,
		tokenizerModel:  tokenizer.DefaultModel,
		parallelism:     DefaultParallelism,
	}
}

// Option is a functional option for configuring the Generator.
type Option func(*config)

// WithCacheDir sets the stage cache root directory. When unset the
// generator runs without memoization.
func WithCacheDir(dir string) Option {
	return func(c *config) {
		c.cacheDir = dir
	}
}

// WithChunkSize sets the maximum chunk length in tokens.
func WithChunkSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the token overlap between consecutive chunks.
func WithChunkOverlap(overlap int) Option {
	return func(c *config) {
		if overlap >= 0 {
			c.chunkOverlap = overlap
		}
	}
}

// WithMaxHeadingLevel sets the deepest heading level the simple
// normalization strategy allows.
func WithMaxHeadingLevel(level int) Option {
	return func(c *config) {
		if level >= 1 {
			c.maxHeadingLevel = level
		}
	}
}

// WithPreserveTables toggles table guarding during splitting.
func WithPreserveTables(preserve bool) Option {
	return func(c *config) {
		c.preserveTables = preserve
	}
}

// WithHeadingCorrector enables the assisted heading-normalization path
// using the given corrector (typically normalizer/openai).
func WithHeadingCorrector(corrector normalizer.Corrector) Option {
	return func(c *config) {
		c.corrector = corrector
	}
}

// WithCorrectionAttempts sets how many times the heading corrector is
// tried before falling back to the simple strategy.
func WithCorrectionAttempts(attempts int) Option {
	return func(c *config) {
		if attempts >= 1 {
			c.correctAttempts = attempts
		}
	}
}

// WithCorrectionBackoff sets the backoff durations between corrector
// attempts.
func WithCorrectionBackoff(backoff []time.Duration) Option {
	return func(c *config) {
		c.correctBackoff = backoff
	}
}

// WithTemplate sets the template rendered by metadata embedding.
func WithTemplate(tmpl string) Option {
	return func(c *config) {
		c.template = tmpl
	}
}

// WithEmbedMetadata toggles rendering metadata into chunk text.
func WithEmbedMetadata(embed bool) Option {
	return func(c *config) {
		c.embedMeta = embed
	}
}

// WithFieldNames sets the metadata key relabeling used when embedding.
func WithFieldNames(fieldNames map[string]string) Option {
	return func(c *config) {
		c.fieldNames = fieldNames
	}
}

// WithPlacement sets the collision policy for caller-supplied metadata.
func WithPlacement(placement metadata.Placement) Option {
	return func(c *config) {
		c.placement = placement
	}
}

// WithTokenCounter sets the token-counting collaborator directly,
// overriding WithTokenizerModel.
func WithTokenCounter(counter tokenizer.Counter) Option {
	return func(c *config) {
		c.counter = counter
	}
}

// WithTokenizerModel sets the tiktoken model used to build the default
// token counter.
func WithTokenizerModel(model string) Option {
	return func(c *config) {
		if model != "" {
			c.tokenizerModel = model
		}
	}
}

// WithParallelism sets how many documents ProcessBatch works on
// concurrently. Values below 1 are treated as 1.
func WithParallelism(parallelism int) Option {
	return func(c *config) {
		if parallelism >= 1 {
			c.parallelism = parallelism
		}
	}
}
