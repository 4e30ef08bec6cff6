//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package cache implements the content-addressed stage cache that memoizes
// the expensive pipeline stages. Entries are keyed by content fingerprint
// under three namespaces, one per stage.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"trpc.group/trpc-go/trpc-raggen-go/document"
	"trpc.group/trpc-go/trpc-raggen-go/fingerprint"
)

// ErrIO marks cache storage failures. A broken cache root is a
// configuration error the caller must see, so these errors are never
// masked by the pipeline.
var ErrIO = errors.New("cache i/o failure")

// Namespace identifies one processing stage with independently addressed
// storage.
type Namespace string

// Cache namespaces, one per pipeline stage.
const (
	// NamespaceConvert stores markdown produced by format conversion,
	// keyed by source file content.
	NamespaceConvert Namespace = "convert"
	// NamespaceProcess stores heading-normalized markdown, keyed by the
	// pre-normalization text.
	NamespaceProcess Namespace = "process"
	// NamespaceRAG stores final chunk lists, keyed by text combined with
	// the metadata configuration.
	NamespaceRAG Namespace = "rag"
)

// namespaces lists every valid namespace, used to build and clean the
// directory tree.
var namespaces = []Namespace{NamespaceConvert, NamespaceProcess, NamespaceRAG}

// File extensions per payload kind.
const (
	textExt      = ".md"
	documentsExt = ".json"
)

// Cache is a content-addressed key-value store on persistent storage.
// A Cache created without a root directory is a no-op: every load misses
// and saves never touch storage, so the pipeline still works correctly,
// just without memoization.
type Cache struct {
	root string
}

// New creates a cache rooted at root, building the namespace directory
// tree. An empty root yields a disabled no-op cache.
func New(root string) (*Cache, error) {
	c := &Cache{root: root}
	if root == "" {
		return c, nil
	}
	for _, ns := range namespaces {
		if err := os.MkdirAll(filepath.Join(root, string(ns)), 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create cache directory: %w", ErrIO, err)
		}
	}
	return c, nil
}

// Enabled reports whether the cache is backed by storage.
func (c *Cache) Enabled() bool {
	return c != nil && c.root != ""
}

// LoadText looks up a text payload. The second return value reports
// whether the entry was present; a miss is not an error.
func (c *Cache) LoadText(ns Namespace, key fingerprint.Fingerprint) (string, bool, error) {
	if !c.Enabled() {
		return "", false, nil
	}
	data, err := os.ReadFile(c.entryPath(ns, key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read cache entry: %w", ErrIO, err)
	}
	return string(data), true, nil
}

// SaveText writes a text payload, overwriting any prior value at the key.
func (c *Cache) SaveText(ns Namespace, key fingerprint.Fingerprint, text string) error {
	if !c.Enabled() {
		return nil
	}
	return writeFileAtomic(c.entryPath(ns, key), []byte(text))
}

// LoadDocuments looks up a chunk list in the rag namespace.
func (c *Cache) LoadDocuments(key fingerprint.Fingerprint) ([]*document.Document, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	data, err := os.ReadFile(c.entryPath(NamespaceRAG, key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to read cache entry: %w", ErrIO, err)
	}
	var docs []*document.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode cached documents: %w", ErrIO, err)
	}
	return docs, true, nil
}

// SaveDocuments serializes a chunk list into the rag namespace.
func (c *Cache) SaveDocuments(key fingerprint.Fingerprint, docs []*document.Document) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("%w: failed to encode documents: %w", ErrIO, err)
	}
	return writeFileAtomic(c.entryPath(NamespaceRAG, key), data)
}

// Clean destructively clears one namespace, or the entire cache when ns is
// empty, recreating the empty directory tree afterward.
func (c *Cache) Clean(ns Namespace) error {
	if !c.Enabled() {
		return nil
	}
	targets := namespaces
	if ns != "" {
		targets = []Namespace{ns}
	}
	for _, target := range targets {
		dir := filepath.Join(c.root, string(target))
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("%w: failed to clean cache namespace %s: %w", ErrIO, target, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: failed to recreate cache namespace %s: %w", ErrIO, target, err)
		}
	}
	return nil
}

// entryPath builds <root>/<namespace>/<64-hex fingerprint>.<ext>.
func (c *Cache) entryPath(ns Namespace, key fingerprint.Fingerprint) string {
	ext := textExt
	if ns == NamespaceRAG {
		ext = documentsExt
	}
	return filepath.Join(c.root, string(ns), key.String()+ext)
}

// writeFileAtomic writes data through a temporary file plus rename so a
// concurrent reader can never observe a partial entry. Concurrent writers
// to the same key are last-writer-wins.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp cache file: %w", ErrIO, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write cache entry: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close cache file: %w", ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to commit cache entry: %w", ErrIO, err)
	}
	return nil
}
