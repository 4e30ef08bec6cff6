//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package docx provides the Word-to-markdown converter.
package docx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gonfva/docxlib"

	"trpc.group/trpc-go/trpc-raggen-go/converter"
)

// supportedExtensions defines the file extensions supported by this converter.
var supportedExtensions = []string{".doc", ".docx"}

// init registers the Word converter with the global registry.
func init() {
	converter.RegisterConverter(converter.FormatDocx, New)
}

// Converter extracts paragraph text from Word documents.
type Converter struct{}

// New creates a new Word converter.
func New() converter.Converter {
	return &Converter{}
}

// Convert implements the converter.Converter interface. Paragraphs are
// separated by blank lines so the splitter can use them as boundaries.
func (c *Converter) Convert(data []byte) (string, error) {
	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}

	var allText strings.Builder
	for _, para := range doc.Paragraphs() {
		var paraText strings.Builder
		for _, child := range para.Children() {
			if child.Run != nil && child.Run.Text != nil {
				paraText.WriteString(child.Run.Text.Text)
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				paraText.WriteString(child.Link.Run.Text.Text)
			}
		}
		text := strings.TrimSpace(paraText.String())
		if text == "" {
			continue
		}
		if allText.Len() > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(text)
	}

	return allText.String(), nil
}

// Kind returns the format kind this converter handles.
func (c *Converter) Kind() converter.FormatKind {
	return converter.FormatDocx
}

// SupportedExtensions returns the file extensions this converter supports.
func (c *Converter) SupportedExtensions() []string {
	return supportedExtensions
}
