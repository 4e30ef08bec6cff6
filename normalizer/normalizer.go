//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package normalizer corrects markdown heading hierarchies. It always has a
// deterministic clamping strategy available and can optionally consult an
// external corrector (typically LLM-backed), falling back to the simple
// strategy when the corrector fails.
package normalizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-raggen-go/log"
)

// Defaults for the normalizer configuration.
const (
	// DefaultMaxHeadingLevel is the deepest heading level the simple
	// strategy allows.
	DefaultMaxHeadingLevel = 3
	// DefaultMaxAttempts is the number of times the assisted corrector is
	// tried before falling back.
	DefaultMaxAttempts = 3
)

// defaultRetryBackoff is the default backoff durations between corrector
// attempts.
var defaultRetryBackoff = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
}

// Heading is one markdown heading: its trimmed title and nesting level.
type Heading struct {
	// Text is the heading title without markers.
	Text string `json:"text"`
	// Level is the heading nesting depth.
	Level int `json:"level"`
}

// Strategy identifies which correction path produced the normalized text.
type Strategy int

// Correction strategies.
const (
	// StrategySimple means the deterministic clamp ran because no
	// corrector was configured.
	StrategySimple Strategy = iota
	// StrategyAssisted means the external corrector succeeded.
	StrategyAssisted
	// StrategyFallback means the corrector failed on every attempt and
	// the simple strategy was used instead.
	StrategyFallback
)

// String returns a human-readable name for the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyAssisted:
		return "assisted"
	case StrategyFallback:
		return "fallback"
	default:
		return "simple"
	}
}

// Outcome reports how a normalization was performed. Err holds the last
// corrector error when Strategy is StrategyFallback; it is informational,
// never fatal.
type Outcome struct {
	Strategy Strategy
	Err      error
}

// Corrector adjusts heading levels to a correct hierarchical structure.
// Implementations must return a list of the same length and order as the
// input, with every level at least 1; the normalizer enforces both
// invariants and treats a violation as a failed attempt.
type Corrector interface {
	// Correct returns the corrected headings.
	Correct(ctx context.Context, headings []Heading) ([]Heading, error)
}

// Normalizer corrects markdown heading hierarchies in full documents.
type Normalizer struct {
	maxHeadingLevel int
	corrector       Corrector
	maxAttempts     int
	retryBackoff    []time.Duration
}

// Option is a functional option for configuring the Normalizer.
type Option func(*Normalizer)

// WithMaxHeadingLevel sets the deepest heading level the simple strategy
// allows. Values below 1 are ignored.
func WithMaxHeadingLevel(level int) Option {
	return func(n *Normalizer) {
		if level >= 1 {
			n.maxHeadingLevel = level
		}
	}
}

// WithCorrector sets the external heading corrector. A nil corrector
// disables the assisted path.
func WithCorrector(c Corrector) Option {
	return func(n *Normalizer) {
		n.corrector = c
	}
}

// WithMaxAttempts sets how many times the corrector is tried before
// falling back. Values below 1 are treated as 1.
func WithMaxAttempts(attempts int) Option {
	return func(n *Normalizer) {
		if attempts < 1 {
			attempts = 1
		}
		n.maxAttempts = attempts
	}
}

// WithRetryBackoff sets the backoff durations between corrector attempts.
// When attempts outnumber the slice, the last duration is reused.
func WithRetryBackoff(backoff []time.Duration) Option {
	return func(n *Normalizer) {
		n.retryBackoff = backoff
	}
}

// New creates a normalizer with the given options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		maxHeadingLevel: DefaultMaxHeadingLevel,
		maxAttempts:     DefaultMaxAttempts,
		retryBackoff:    defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize corrects the heading hierarchy of text. The output contains
// the same number of heading lines, in the same order, as the input; all
// non-heading content is preserved exactly. The returned Outcome records
// which strategy produced the result.
//
// When the same heading line occurs more than once, every occurrence
// receives the first occurrence's correction, so duplicate headings cannot
// receive distinct corrected levels. This is a documented limitation.
func (n *Normalizer) Normalize(ctx context.Context, text string) (string, Outcome) {
	headings := ExtractHeadings(text)
	if len(headings) == 0 {
		return text, Outcome{Strategy: StrategySimple}
	}

	var corrected []Heading
	outcome := Outcome{Strategy: StrategySimple}
	if n.corrector != nil {
		var err error
		corrected, err = n.correctWithRetry(ctx, headings)
		if err != nil {
			log.Warnf("heading correction failed after %d attempts, falling back to simple strategy: %v",
				n.maxAttempts, err)
			outcome = Outcome{Strategy: StrategyFallback, Err: err}
		} else {
			outcome = Outcome{Strategy: StrategyAssisted}
		}
	}
	if corrected == nil {
		corrected = n.clampHeadings(headings)
	}

	return rebuildText(text, corrected), outcome
}

// correctWithRetry runs the corrector up to maxAttempts times, enforcing
// the same-length and valid-level invariants on every attempt.
func (n *Normalizer) correctWithRetry(ctx context.Context, headings []Heading) ([]Heading, error) {
	var lastErr error
	for attempt := 0; attempt < n.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := n.backoffDuration(attempt - 1)
			if backoff > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
				}
			}
		}

		corrected, err := n.corrector.Correct(ctx, headings)
		if err != nil {
			lastErr = err
			continue
		}
		if len(corrected) != len(headings) {
			lastErr = fmt.Errorf("corrector returned %d headings, expected %d",
				len(corrected), len(headings))
			continue
		}
		if h, ok := invalidHeading(corrected); ok {
			lastErr = fmt.Errorf("corrector returned invalid level %d for heading %q",
				h.Level, h.Text)
			continue
		}
		return corrected, nil
	}
	return nil, lastErr
}

// invalidHeading returns the first heading whose level cannot be rendered
// as a markdown heading line.
func invalidHeading(headings []Heading) (Heading, bool) {
	for _, h := range headings {
		if h.Level < 1 {
			return h, true
		}
	}
	return Heading{}, false
}

// backoffDuration returns the backoff for the given retry index, reusing
// the last duration when retries outnumber the slice.
func (n *Normalizer) backoffDuration(idx int) time.Duration {
	if len(n.retryBackoff) == 0 {
		return 0
	}
	if idx < len(n.retryBackoff) {
		return n.retryBackoff[idx]
	}
	return n.retryBackoff[len(n.retryBackoff)-1]
}

// clampHeadings applies the simple strategy: clamp every level to the
// configured maximum. It always succeeds.
func (n *Normalizer) clampHeadings(headings []Heading) []Heading {
	clamped := make([]Heading, len(headings))
	for i, h := range headings {
		level := h.Level
		if level > n.maxHeadingLevel {
			level = n.maxHeadingLevel
		}
		clamped[i] = Heading{Text: h.Text, Level: level}
	}
	return clamped
}

// ExtractHeadings scans text line-by-line for markdown heading lines and
// returns them in discovery order. The level is the number of '#' marker
// characters in the line; the title is the line with markers removed and
// trimmed.
func ExtractHeadings(text string) []Heading {
	var headings []Heading
	for _, line := range strings.Split(text, "\n") {
		if !isHeadingLine(line) {
			continue
		}
		headings = append(headings, Heading{
			Text:  strings.TrimSpace(strings.ReplaceAll(line, "#", "")),
			Level: strings.Count(line, "#"),
		})
	}
	return headings
}

// rebuildText re-renders corrected headings in place of the original
// heading lines, preserving all non-heading lines and ordering exactly.
// Heading lines pair with corrected headings in draw order, and a line
// identical to an earlier heading line reuses that line's rendering, the
// way ordered whole-text replacement resolves duplicates.
func rebuildText(text string, corrected []Heading) string {
	lines := strings.Split(text, "\n")
	assigned := make(map[string]string)
	next := 0
	for i, line := range lines {
		if !isHeadingLine(line) {
			continue
		}
		if next >= len(corrected) {
			break
		}
		rendered, seen := assigned[line]
		if !seen {
			h := corrected[next]
			rendered = strings.Repeat("#", h.Level) + " " + h.Text
			assigned[line] = rendered
		}
		next++
		lines[i] = rendered
	}
	return strings.Join(lines, "\n")
}

// isHeadingLine reports whether line is a markdown heading line.
func isHeadingLine(line string) bool {
	return len(line) > 0 && line[0] == '#'
}
