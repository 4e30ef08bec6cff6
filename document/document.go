//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the value types flowing through the RAG
// generation pipeline.
package document

import "strings"

// Metadata keys attached to chunks by the pipeline.
const (
	// MetaSection is the nearest level-1 heading enclosing a chunk.
	MetaSection = "section"
	// MetaSubsection is the nearest level-2 heading enclosing a chunk.
	MetaSubsection = "subsection"
	// MetaParagraph is the nearest level-3 heading enclosing a chunk.
	MetaParagraph = "paragraph"
	// MetaDomain is the per-source index assigned during dataset generation.
	MetaDomain = "domain"
)

// Document is a retrieval-ready chunk of text: a bounded text span with its
// token length and structural/custom metadata. Pipeline stages treat
// documents as immutable values and produce new instances instead of
// mutating shared ones.
type Document struct {
	// Text is the chunk content.
	Text string `json:"text"`
	// Length is the token count of Text as reported by the configured
	// token counter.
	Length int `json:"length"`
	// Metadata holds structural metadata (section hierarchy) merged with
	// caller-supplied metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the document. Metadata is copied so the
// clone can be modified without aliasing the original.
func (d *Document) Clone() *Document {
	clone := &Document{
		Text:   d.Text,
		Length: d.Length,
	}
	if d.Metadata != nil {
		clone.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// IsEmpty reports whether the document carries no usable content.
func (d *Document) IsEmpty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// Input describes one source document handed to the pipeline: a file path
// plus caller-supplied metadata merged into every chunk produced from it.
type Input struct {
	// Path is the location of the source file.
	Path string `json:"path"`
	// Metadata is caller context attached to every resulting chunk.
	Metadata map[string]any `json:"metadata,omitempty"`
}
