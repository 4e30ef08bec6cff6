//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-raggen-go/document"
	"trpc.group/trpc-go/trpc-raggen-go/fingerprint"
)

func TestNew_BuildsNamespaceTree(t *testing.T) {
	root := t.TempDir()
	_, err := New(root)
	require.NoError(t, err)

	for _, ns := range []Namespace{NamespaceConvert, NamespaceProcess, NamespaceRAG} {
		info, err := os.Stat(filepath.Join(root, string(ns)))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestText_RoundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := fingerprint.HashText("source")
	for _, ns := range []Namespace{NamespaceConvert, NamespaceProcess} {
		require.NoError(t, c.SaveText(ns, key, "# converted\n\ncontent"))

		got, ok, err := c.LoadText(ns, key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "# converted\n\ncontent", got)
	}
}

func TestDocuments_RoundTrip(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	docs := []*document.Document{
		{Text: "first chunk", Length: 11, Metadata: map[string]any{"section": "Intro"}},
		{Text: "second chunk", Length: 12},
	}
	key := fingerprint.HashText("composite key")
	require.NoError(t, c.SaveDocuments(key, docs))

	got, ok, err := c.LoadDocuments(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, "first chunk", got[0].Text)
	require.Equal(t, 11, got[0].Length)
	require.Equal(t, "Intro", got[0].Metadata["section"])
	require.Equal(t, "second chunk", got[1].Text)
	require.Nil(t, got[1].Metadata)
}

func TestLoad_MissIsNotAnError(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	_, ok, err := c.LoadText(NamespaceConvert, fingerprint.HashText("absent"))
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = c.LoadDocuments(fingerprint.HashText("absent"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoad_Idempotent(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := fingerprint.HashText("k")
	require.NoError(t, c.SaveText(NamespaceProcess, key, "payload"))

	for i := 0; i < 3; i++ {
		got, ok, err := c.LoadText(NamespaceProcess, key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "payload", got)
	}
}

func TestSave_Overwrites(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	key := fingerprint.HashText("k")
	require.NoError(t, c.SaveText(NamespaceConvert, key, "old"))
	require.NoError(t, c.SaveText(NamespaceConvert, key, "new"))

	got, ok, err := c.LoadText(NamespaceConvert, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", got)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	key := fingerprint.HashText("k")
	require.NoError(t, c.SaveText(NamespaceConvert, key, "payload"))

	entries, err := os.ReadDir(filepath.Join(root, string(NamespaceConvert)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, key.String()+".md", entries[0].Name())
}

func TestEntryNaming(t *testing.T) {
	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	key := fingerprint.HashText("naming")
	require.NoError(t, c.SaveText(NamespaceProcess, key, "text"))
	require.NoError(t, c.SaveDocuments(key, []*document.Document{{Text: "t", Length: 1}}))

	require.FileExists(t, filepath.Join(root, "process", key.String()+".md"))
	require.FileExists(t, filepath.Join(root, "rag", key.String()+".json"))
	require.Len(t, key.String(), 64)
	require.False(t, strings.ContainsAny(key.String(), "ABCDEF"))
}

func TestDisabledCache_NoOps(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	require.False(t, c.Enabled())

	key := fingerprint.HashText("k")
	require.NoError(t, c.SaveText(NamespaceConvert, key, "payload"))

	_, ok, err := c.LoadText(NamespaceConvert, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.SaveDocuments(key, []*document.Document{{Text: "t"}}))
	_, ok, err = c.LoadDocuments(key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Clean(""))
}

func TestClean_SingleNamespace(t *testing.T) {
	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	key := fingerprint.HashText("k")
	require.NoError(t, c.SaveText(NamespaceConvert, key, "a"))
	require.NoError(t, c.SaveText(NamespaceProcess, key, "b"))

	require.NoError(t, c.Clean(NamespaceConvert))

	_, ok, err := c.LoadText(NamespaceConvert, key)
	require.NoError(t, err)
	require.False(t, ok)

	// Other namespaces are untouched and the cleaned directory is recreated.
	got, ok, err := c.LoadText(NamespaceProcess, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", got)
	require.DirExists(t, filepath.Join(root, string(NamespaceConvert)))
}

func TestClean_All(t *testing.T) {
	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	key := fingerprint.HashText("k")
	require.NoError(t, c.SaveText(NamespaceConvert, key, "a"))
	require.NoError(t, c.SaveDocuments(key, []*document.Document{{Text: "t"}}))

	require.NoError(t, c.Clean(""))

	for _, ns := range []Namespace{NamespaceConvert, NamespaceProcess, NamespaceRAG} {
		require.DirExists(t, filepath.Join(root, string(ns)))
		entries, err := os.ReadDir(filepath.Join(root, string(ns)))
		require.NoError(t, err)
		require.Empty(t, entries)
	}
}
