//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package html provides the HTML-to-markdown converter.
package html

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"trpc.group/trpc-go/trpc-raggen-go/converter"
)

// supportedExtensions defines the file extensions supported by this converter.
var supportedExtensions = []string{".html", ".htm"}

// init registers the HTML converter with the global registry.
func init() {
	converter.RegisterConverter(converter.FormatHTML, New)
}

// Converter renders HTML into markdown, preserving headings, links and
// tables so the downstream splitter sees real markdown structure.
type Converter struct {
	md *md.Converter
}

// New creates a new HTML converter.
func New() converter.Converter {
	return &Converter{
		md: md.NewConverter("", true, nil),
	}
}

// Convert implements the converter.Converter interface.
func (c *Converter) Convert(data []byte) (string, error) {
	markdown, err := c.md.ConvertString(string(data))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML: %w", err)
	}
	return markdown, nil
}

// Kind returns the format kind this converter handles.
func (c *Converter) Kind() converter.FormatKind {
	return converter.FormatHTML
}

// SupportedExtensions returns the file extensions this converter supports.
func (c *Converter) SupportedExtensions() []string {
	return supportedExtensions
}
