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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-raggen-go/document"
)

const twoTablesDoc = `# Data

Intro paragraph.

| name | value |
| ---- | ----- |
| a    | 1     |

Middle paragraph.

| x | y |
| 3 | 4 |

Closing paragraph.
`

func TestExtractTables(t *testing.T) {
	redacted, tables := ExtractTables(twoTablesDoc)

	require.Len(t, tables, 2)
	require.Contains(t, tables[0], "| name | value |")
	require.Contains(t, tables[0], "| a    | 1     |")
	require.Contains(t, tables[1], "| x | y |")

	require.Contains(t, redacted, TablePlaceholder(0))
	require.Contains(t, redacted, TablePlaceholder(1))
	require.NotContains(t, redacted, "| name | value |")
	require.NotContains(t, redacted, "| x | y |")

	// Placeholders appear in discovery order.
	require.Less(t,
		strings.Index(redacted, TablePlaceholder(0)),
		strings.Index(redacted, TablePlaceholder(1)))
}

func TestExtractTables_NoTables(t *testing.T) {
	text := "plain paragraph\n\nanother paragraph\n"
	redacted, tables := ExtractTables(text)
	require.Empty(t, tables)
	require.Equal(t, text, redacted)
}

func TestRestoreTables_RoundTrip(t *testing.T) {
	redacted, tables := ExtractTables(twoTablesDoc)

	chunks := []*document.Document{
		{Text: redacted, Length: len(redacted)},
	}
	restored := RestoreTables(chunks, tables)
	require.Len(t, restored, 1)

	// Every table's content is reproduced byte-for-byte.
	for _, table := range tables {
		require.Contains(t, restored[0].Text, table)
	}
	require.NotContains(t, restored[0].Text, "{table_")

	// Inputs are not mutated.
	require.Contains(t, chunks[0].Text, TablePlaceholder(0))
}

func TestRestoreTables_UntouchedChunks(t *testing.T) {
	_, tables := ExtractTables(twoTablesDoc)
	chunks := []*document.Document{
		{Text: "no placeholder here", Length: 19},
		{Text: "holds " + TablePlaceholder(1), Length: 15},
	}

	restored := RestoreTables(chunks, tables)
	require.Equal(t, "no placeholder here", restored[0].Text)
	require.Contains(t, restored[1].Text, "\n"+tables[1]+"\n")
	require.NotContains(t, restored[1].Text, "| name | value |")
}

func TestIsTablePlaceholder(t *testing.T) {
	require.True(t, isTablePlaceholder("{table_0}"))
	require.True(t, isTablePlaceholder(" {table_12}\n\n"))
	require.False(t, isTablePlaceholder("{table_}"))
	require.False(t, isTablePlaceholder("text {table_0}"))
	require.False(t, isTablePlaceholder("plain text"))
}
