//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package pdf provides the PDF-to-markdown converter.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"trpc.group/trpc-go/trpc-raggen-go/converter"
)

// supportedExtensions defines the file extensions supported by this converter.
var supportedExtensions = []string{".pdf"}

// init registers the PDF converter with the global registry.
func init() {
	converter.RegisterConverter(converter.FormatPDF, New)
}

// Converter extracts the text layer of a PDF document.
type Converter struct{}

// New creates a new PDF converter.
func New() converter.Converter {
	return &Converter{}
}

// Convert implements the converter.Converter interface. It extracts plain
// text from every page of the PDF, one page per paragraph.
func (c *Converter) Convert(data []byte) (string, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var allText strings.Builder
	totalPages := pdfReader.NumPage()

	// Extract text from each page (1-indexed).
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := pdfReader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		if allText.Len() > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(strings.TrimSpace(text))
	}

	return allText.String(), nil
}

// Kind returns the format kind this converter handles.
func (c *Converter) Kind() converter.FormatKind {
	return converter.FormatPDF
}

// SupportedExtensions returns the file extensions this converter supports.
func (c *Converter) SupportedExtensions() []string {
	return supportedExtensions
}
