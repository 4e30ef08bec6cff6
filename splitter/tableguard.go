//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package splitter

import (
	"fmt"
	"regexp"
	"strings"

	"trpc.group/trpc-go/trpc-raggen-go/document"
)

// tablePattern matches a table block: a maximal run of consecutive
// pipe-delimited rows surrounded by blank lines.
var tablePattern = regexp.MustCompile(`\n\n(\|[^\n]*\|\n)+\n`)

// placeholderPattern matches a table placeholder token standing alone.
var placeholderPattern = regexp.MustCompile(`^\{table_\d+\}$`)

// TablePlaceholder returns the placeholder token for the i-th extracted
// table block.
func TablePlaceholder(i int) string {
	return fmt.Sprintf("{table_%d}", i)
}

// ExtractTables finds every table block in text and replaces it with a
// positional placeholder token, 0-indexed in discovery order. It returns
// the redacted text and the extracted blocks. Placeholders occupy their
// own line surrounded by blank lines, so downstream paragraph splitting
// keeps them whole.
func ExtractTables(text string) (string, []string) {
	matches := tablePattern.FindAllString(text, -1)
	tables := make([]string, 0, len(matches))
	for _, match := range matches {
		tables = append(tables, strings.TrimSpace(match))
	}
	for i, table := range tables {
		text = strings.ReplaceAll(text, table, TablePlaceholder(i))
	}
	return text, tables
}

// RestoreTables substitutes each placeholder token found in chunk text
// with its original table block, re-wrapped with a leading and trailing
// newline. It returns new documents; the inputs are not modified. Length
// is not recomputed here: a restored table keeps the token accounting of
// one indivisible atomic unit.
func RestoreTables(docs []*document.Document, tables []string) []*document.Document {
	if len(tables) == 0 {
		return docs
	}
	restored := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		clone := doc.Clone()
		for i, table := range tables {
			tag := TablePlaceholder(i)
			if strings.Contains(clone.Text, tag) {
				clone.Text = strings.ReplaceAll(clone.Text, tag, "\n"+table+"\n")
			}
		}
		restored = append(restored, clone)
	}
	return restored
}

// isTablePlaceholder reports whether piece is exactly one placeholder
// token (modulo surrounding whitespace). Such pieces are atomic: the
// splitter never places a split point inside them.
func isTablePlaceholder(piece string) bool {
	return placeholderPattern.MatchString(strings.TrimSpace(piece))
}
