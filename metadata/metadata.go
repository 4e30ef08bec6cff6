//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package metadata merges caller-supplied metadata with the splitter's
// structural metadata and optionally renders metadata into chunk text.
package metadata

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"trpc.group/trpc-go/trpc-raggen-go/document"
	"trpc.group/trpc-go/trpc-raggen-go/tokenizer"
)

// Placement controls how caller-supplied metadata merges with a chunk's
// structural metadata on key collisions.
type Placement string

// Placement policies.
const (
	// PlacementBefore lets structural metadata win collisions.
	PlacementBefore Placement = "before"
	// PlacementAfter lets caller metadata overwrite structural keys.
	PlacementAfter Placement = "after"
)

// DefaultTemplate renders metadata fields as "Key: value" lines above the
// chunk text.
const DefaultTemplate = `{{range .Fields}}{{.Key}}: {{.Value}}
{{end}}
{{.Text}}`

// defaultFieldNames relabels the structural metadata keys for rendering.
var defaultFieldNames = map[string]string{
	document.MetaSection:    "Section",
	document.MetaSubsection: "Subsection",
	document.MetaParagraph:  "Paragraph",
}

// structuralOrder fixes the render order of structural keys; remaining
// keys follow in sorted order so rendering is deterministic.
var structuralOrder = []string{
	document.MetaSection,
	document.MetaSubsection,
	document.MetaParagraph,
}

// Field is one metadata entry handed to the template, after relabeling.
type Field struct {
	Key   string
	Value any
}

// renderContext is the data rendered by the template.
type renderContext struct {
	// Text is the chunk text.
	Text string
	// Fields are the relabeled metadata entries in deterministic order.
	Fields []Field
	// Metadata is the relabeled metadata as a map, for custom templates.
	Metadata map[string]any
}

// Fuser merges and renders chunk metadata.
type Fuser struct {
	tmpl       *template.Template
	templates  string
	placement  Placement
	fieldNames map[string]string
	counter    tokenizer.Counter
}

// Option is a functional option for configuring the Fuser.
type Option func(*Fuser)

// WithTemplate sets the template text used by EmbedMetadata.
func WithTemplate(tmpl string) Option {
	return func(f *Fuser) {
		if tmpl != "" {
			f.templates = tmpl
		}
	}
}

// WithPlacement sets the collision policy for AddMetadata.
func WithPlacement(placement Placement) Option {
	return func(f *Fuser) {
		if placement == PlacementBefore || placement == PlacementAfter {
			f.placement = placement
		}
	}
}

// WithFieldNames sets the metadata key relabeling applied before
// rendering. Keys without a mapping pass through unchanged.
func WithFieldNames(fieldNames map[string]string) Option {
	return func(f *Fuser) {
		if len(fieldNames) > 0 {
			f.fieldNames = fieldNames
		}
	}
}

// WithCounter sets the token counter used to recompute chunk lengths
// after embedding.
func WithCounter(counter tokenizer.Counter) Option {
	return func(f *Fuser) {
		if counter != nil {
			f.counter = counter
		}
	}
}

// New creates a fuser with the given options.
func New(opts ...Option) (*Fuser, error) {
	f := &Fuser{
		templates:  DefaultTemplate,
		placement:  PlacementBefore,
		fieldNames: defaultFieldNames,
		counter:    tokenizer.RuneCounter{},
	}
	for _, opt := range opts {
		opt(f)
	}
	tmpl, err := template.New("meta_embed").Parse(f.templates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata template: %w", err)
	}
	f.tmpl = tmpl
	return f, nil
}

// AddMetadata merges extra into each chunk's metadata under the configured
// placement policy and returns new documents; the inputs are not modified.
func (f *Fuser) AddMetadata(docs []*document.Document, extra map[string]any) []*document.Document {
	if len(extra) == 0 {
		return docs
	}
	merged := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		clone := doc.Clone()
		fused := make(map[string]any, len(extra)+len(clone.Metadata))
		switch f.placement {
		case PlacementAfter:
			// Caller metadata overwrites colliding structural keys.
			for k, v := range clone.Metadata {
				fused[k] = v
			}
			for k, v := range extra {
				fused[k] = v
			}
		default:
			// Structural metadata wins collisions.
			for k, v := range extra {
				fused[k] = v
			}
			for k, v := range clone.Metadata {
				fused[k] = v
			}
		}
		clone.Metadata = fused
		merged = append(merged, clone)
	}
	return merged
}

// EmbedMetadata renders the template over each chunk's text and relabeled
// metadata, replaces the chunk text with the trimmed result and recomputes
// its length. Chunks with empty metadata pass through unmodified. Returns
// new documents; the inputs are not modified.
func (f *Fuser) EmbedMetadata(docs []*document.Document) ([]*document.Document, error) {
	embedded := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Metadata) == 0 {
			embedded = append(embedded, doc)
			continue
		}
		clone := doc.Clone()

		var rendered strings.Builder
		if err := f.tmpl.Execute(&rendered, f.renderContext(clone)); err != nil {
			return nil, fmt.Errorf("failed to render metadata template: %w", err)
		}
		clone.Text = strings.TrimSpace(rendered.String())
		clone.Length = f.counter.Count(clone.Text)
		embedded = append(embedded, clone)
	}
	return embedded, nil
}

// renderContext relabels the chunk metadata and orders it for rendering:
// structural keys first, remaining keys sorted.
func (f *Fuser) renderContext(doc *document.Document) renderContext {
	relabeled := make(map[string]any, len(doc.Metadata))
	fields := make([]Field, 0, len(doc.Metadata))

	seen := make(map[string]bool, len(structuralOrder))
	for _, key := range structuralOrder {
		value, ok := doc.Metadata[key]
		if !ok {
			continue
		}
		seen[key] = true
		fields = append(fields, Field{Key: f.relabel(key), Value: value})
	}

	rest := make([]string, 0, len(doc.Metadata))
	for key := range doc.Metadata {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fields = append(fields, Field{Key: f.relabel(key), Value: doc.Metadata[key]})
	}

	for _, field := range fields {
		relabeled[field.Key] = field.Value
	}
	return renderContext{Text: doc.Text, Fields: fields, Metadata: relabeled}
}

// relabel maps a metadata key through fieldNames, passing unmapped keys
// through unchanged.
func (f *Fuser) relabel(key string) string {
	if renamed, ok := f.fieldNames[key]; ok {
		return renamed
	}
	return key
}
