//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package splitter turns markdown text into retrieval-ready chunks. It
// splits on heading structure first, attaching section metadata, then
// windows each segment under a token budget with configurable overlap,
// shielding table blocks from structural splitting.
package splitter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"trpc.group/trpc-go/trpc-raggen-go/document"
	"trpc.group/trpc-go/trpc-raggen-go/internal/encoding"
	"trpc.group/trpc-go/trpc-raggen-go/tokenizer"
)

// Defaults for the splitter configuration.
const (
	// DefaultChunkSize is the default maximum chunk length in tokens.
	DefaultChunkSize = 256
	// DefaultChunkOverlap is the default token overlap between
	// consecutive chunks.
	DefaultChunkOverlap = 30
)

// maxSplitHeadingLevel is the deepest heading level used for structural
// splitting. Deeper headings stay in chunk bodies.
const maxSplitHeadingLevel = 3

// headingMetaKeys maps a heading level to its chunk metadata key.
var headingMetaKeys = [maxSplitHeadingLevel]string{
	document.MetaSection,
	document.MetaSubsection,
	document.MetaParagraph,
}

// separators are the semantic boundaries tried, in priority order, before
// falling back to hard rune cuts.
var separators = []string{"\n\n", "\n", ". ", " "}

// Splitter is a heading-aware, token-budget-aware recursive text splitter.
type Splitter struct {
	chunkSize      int
	chunkOverlap   int
	preserveTables bool
	counter        tokenizer.Counter
	md             goldmark.Markdown
}

// Option is a functional option for configuring the Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length in tokens.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithChunkOverlap sets the token overlap between consecutive chunks.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.chunkOverlap = overlap
		}
	}
}

// WithPreserveTables toggles table guarding. When enabled, table blocks
// are extracted before splitting and restored verbatim afterwards.
func WithPreserveTables(preserve bool) Option {
	return func(s *Splitter) {
		s.preserveTables = preserve
	}
}

// WithCounter sets the token-counting collaborator used for length
// accounting and split decisions.
func WithCounter(counter tokenizer.Counter) Option {
	return func(s *Splitter) {
		if counter != nil {
			s.counter = counter
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:      DefaultChunkSize,
		chunkOverlap:   DefaultChunkOverlap,
		preserveTables: true,
		counter:        tokenizer.RuneCounter{},
		md:             goldmark.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize - 1
	}
	return s
}

// segment is a heading-delimited span of body text with the heading
// metadata inherited from its enclosing sections.
type segment struct {
	body     string
	metadata map[string]any
}

// Split chunks text into an ordered list of documents. Output order
// matches document reading order; every chunk carries the heading
// metadata of its enclosing sections and a token length computed by the
// configured counter.
func (s *Splitter) Split(text string) []*document.Document {
	var tables []string
	if s.preserveTables {
		text, tables = ExtractTables(text)
	}

	var docs []*document.Document
	for _, seg := range s.splitByHeadings(text) {
		pieces := s.splitPieces(seg.body, 0)
		for _, window := range s.mergePieces(pieces) {
			docs = append(docs, &document.Document{
				Text:     window,
				Length:   s.counter.Count(window),
				Metadata: copyMetadata(seg.metadata),
			})
		}
	}

	if s.preserveTables {
		docs = RestoreTables(docs, tables)
	}
	return docs
}

// heading is one structural heading located in the source text.
type heading struct {
	level        int
	title        string
	lineStart    int // offset of the heading line start
	contentStart int // offset just past the heading line
}

// splitByHeadings splits text on level 1-3 headings, stripping heading
// lines from bodies and deriving metadata from the nearest enclosing
// heading at each level.
func (s *Splitter) splitByHeadings(text string) []segment {
	headings := s.locateHeadings(text)
	if len(headings) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []segment{{body: strings.TrimSpace(text)}}
	}

	var segments []segment
	// Content before the first heading carries no heading metadata.
	if before := strings.TrimSpace(text[:headings[0].lineStart]); before != "" {
		segments = append(segments, segment{body: before})
	}

	// titles tracks the nearest enclosing heading title per level.
	var titles [maxSplitHeadingLevel]string
	for i, h := range headings {
		titles[h.level-1] = h.title
		for deeper := h.level; deeper < maxSplitHeadingLevel; deeper++ {
			titles[deeper] = ""
		}

		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].lineStart
		}
		body := strings.TrimSpace(text[h.contentStart:end])
		if body == "" {
			continue
		}

		metadata := make(map[string]any, maxSplitHeadingLevel)
		for level, title := range titles {
			if title != "" {
				metadata[headingMetaKeys[level]] = title
			}
		}
		segments = append(segments, segment{body: body, metadata: metadata})
	}
	return segments
}

// locateHeadings walks the markdown AST and returns every level 1-3
// heading with its byte offsets, in document order. Parsing through
// goldmark keeps heading-like lines inside fenced code blocks out of the
// structural split.
func (s *Splitter) locateHeadings(text string) []heading {
	source := []byte(text)
	root := s.md.Parser().Parse(gmtext.NewReader(source))

	var headings []heading
	lastPos := 0
	ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := node.(*ast.Heading)
		if !ok || h.Level > maxSplitHeadingLevel {
			return ast.WalkContinue, nil
		}

		lineStart, contentStart := headingBounds(h, source)
		// Keep offsets monotonic so section ranges are always valid.
		if lineStart < lastPos {
			lineStart = lastPos
		}
		if contentStart < lineStart {
			contentStart = lineStart
		}
		lastPos = contentStart

		headings = append(headings, heading{
			level:        h.Level,
			title:        extractText(h, source),
			lineStart:    lineStart,
			contentStart: contentStart,
		})
		return ast.WalkContinue, nil
	})
	return headings
}

// headingBounds returns the offsets of a heading's line start and of the
// first byte after its line.
func headingBounds(h *ast.Heading, source []byte) (lineStart, contentStart int) {
	if h.Lines().Len() == 0 {
		return 0, 0
	}
	lineStart = h.Lines().At(0).Start
	// Move back to the start of the line, before the '#' markers.
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	contentStart = h.Lines().At(h.Lines().Len() - 1).Stop
	if contentStart < len(source) && source[contentStart] == '\n' {
		contentStart++
	}
	return lineStart, contentStart
}

// extractText extracts the text content from an AST node.
func extractText(node ast.Node, source []byte) string {
	var buf strings.Builder
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			buf.Write(v.Text(source))
		case *ast.String:
			buf.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// splitPieces recursively splits text into pieces that each fit the token
// budget, preferring semantic boundaries in separator priority order and
// falling back to rune-boundary halving. Table placeholder tokens are
// atomic and returned whole regardless of budget. Separators stay
// attached to the preceding piece so merging reconstructs the text.
func (s *Splitter) splitPieces(text string, sepIdx int) []string {
	if text == "" {
		return nil
	}
	if isTablePlaceholder(text) || s.counter.Count(text) <= s.chunkSize {
		return []string{text}
	}

	for ; sepIdx < len(separators); sepIdx++ {
		parts := strings.SplitAfter(text, separators[sepIdx])
		if len(parts) == 1 {
			continue
		}
		var pieces []string
		for _, part := range parts {
			pieces = append(pieces, s.splitPieces(part, sepIdx+1)...)
		}
		return pieces
	}

	// No semantic boundary left: halve at rune boundaries until the
	// pieces fit. Single runes are indivisible.
	first, rest := encoding.SplitHalf(text)
	if rest == "" {
		return []string{text}
	}
	return append(s.splitPieces(first, sepIdx), s.splitPieces(rest, sepIdx)...)
}

// mergePieces packs pieces into windows of at most chunkSize tokens,
// carrying up to chunkOverlap tokens of trailing pieces into the next
// window. Windows are trimmed; empty windows are dropped.
func (s *Splitter) mergePieces(pieces []string) []string {
	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		window := strings.TrimSpace(strings.Join(current, ""))
		if window != "" {
			chunks = append(chunks, window)
		}
	}

	for _, piece := range pieces {
		pieceTokens := s.counter.Count(piece)
		if currentTokens+pieceTokens > s.chunkSize && len(current) > 0 {
			flush()
			current, currentTokens = s.overlapTail(current)
			// Drop carried pieces that still leave no room.
			for currentTokens+pieceTokens > s.chunkSize && len(current) > 0 {
				currentTokens -= s.counter.Count(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		currentTokens += pieceTokens
	}
	if len(current) > 0 {
		flush()
	}
	return chunks
}

// overlapTail returns the trailing pieces of the previous window that fit
// in the overlap budget, with their token total.
func (s *Splitter) overlapTail(previous []string) ([]string, int) {
	if s.chunkOverlap <= 0 {
		return nil, 0
	}
	var kept []string
	keptTokens := 0
	for i := len(previous) - 1; i >= 0; i-- {
		tokens := s.counter.Count(previous[i])
		if keptTokens+tokens > s.chunkOverlap {
			break
		}
		kept = append([]string{previous[i]}, kept...)
		keptTokens += tokens
	}
	return kept, keptTokens
}

// copyMetadata returns an independent copy of metadata; nil stays nil.
func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	copied := make(map[string]any, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	return copied
}
