//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package converter defines the format-conversion collaborators that turn
// raw document bytes into markdown text, dispatched over a closed set of
// format kinds.
package converter

import (
	"errors"
	"strings"
)

// ErrUnsupportedFormat is returned when no converter handles a file
// extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// FormatKind enumerates the document formats the pipeline understands.
// Unknown extensions map to FormatUnknown, a distinct variant rather than
// an exception path.
type FormatKind int

// Supported format kinds.
const (
	// FormatUnknown marks an extension no converter handles.
	FormatUnknown FormatKind = iota
	// FormatMarkdown is markdown text converted by identity.
	FormatMarkdown
	// FormatPDF is a PDF document.
	FormatPDF
	// FormatHTML is an HTML page.
	FormatHTML
	// FormatDocx is a Word document.
	FormatDocx
)

// String returns a human-readable name for the format kind.
func (k FormatKind) String() string {
	switch k {
	case FormatMarkdown:
		return "markdown"
	case FormatPDF:
		return "pdf"
	case FormatHTML:
		return "html"
	case FormatDocx:
		return "docx"
	default:
		return "unknown"
	}
}

// KindForExtension maps a file extension (with dot prefix, any case) to its
// format kind.
func KindForExtension(ext string) FormatKind {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	case ".html", ".htm":
		return FormatHTML
	case ".doc", ".docx":
		return FormatDocx
	default:
		return FormatUnknown
	}
}

// Converter turns raw document bytes of one format into markdown text.
type Converter interface {
	// Convert converts raw bytes into markdown text.
	Convert(data []byte) (string, error)

	// Kind returns the format kind this converter handles.
	Kind() FormatKind

	// SupportedExtensions returns the file extensions this converter
	// supports, with the dot prefix (e.g. ".pdf").
	SupportedExtensions() []string
}
