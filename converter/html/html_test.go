//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package html

import (
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-raggen-go/converter"
)

func TestConvert_Headings(t *testing.T) {
	input := `<html><body>
<h1>Title</h1>
<p>First paragraph.</p>
<h2>Section</h2>
<p>Second paragraph.</p>
</body></html>`

	got, err := New().Convert([]byte(input))
	require.NoError(t, err)
	require.Contains(t, got, "# Title")
	require.Contains(t, got, "## Section")
	require.Contains(t, got, "First paragraph.")
	require.Contains(t, got, "Second paragraph.")
}

func TestConvert_Links(t *testing.T) {
	got, err := New().Convert([]byte(`<p>See <a href="https://example.com">docs</a>.</p>`))
	require.NoError(t, err)
	require.Contains(t, got, "[docs](https://example.com)")
}

func TestRegistration(t *testing.T) {
	for _, ext := range []string{".html", ".htm"} {
		conv, err := converter.ForExtension(ext)
		require.NoError(t, err)
		require.Equal(t, converter.FormatHTML, conv.Kind())
	}
}
