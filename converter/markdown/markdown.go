//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package markdown provides the identity converter for markdown input.
package markdown

import (
	"trpc.group/trpc-go/trpc-raggen-go/converter"
)

// supportedExtensions defines the file extensions supported by this converter.
var supportedExtensions = []string{".md", ".markdown"}

// init registers the markdown converter with the global registry.
func init() {
	converter.RegisterConverter(converter.FormatMarkdown, New)
}

// Converter passes markdown input through unchanged.
type Converter struct{}

// New creates a new markdown converter.
func New() converter.Converter {
	return &Converter{}
}

// Convert implements the converter.Converter interface. Markdown is
// already the pipeline's working format, so conversion is identity.
func (c *Converter) Convert(data []byte) (string, error) {
	return string(data), nil
}

// Kind returns the format kind this converter handles.
func (c *Converter) Kind() converter.FormatKind {
	return converter.FormatMarkdown
}

// SupportedExtensions returns the file extensions this converter supports.
func (c *Converter) SupportedExtensions() []string {
	return supportedExtensions
}
