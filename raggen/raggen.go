//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package raggen orchestrates the document-processing pipeline: format
// conversion, heading normalization, chunking and metadata fusion, with a
// content-addressed stage cache at every boundary.
package raggen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-raggen-go/cache"
	"trpc.group/trpc-go/trpc-raggen-go/converter"
	"trpc.group/trpc-go/trpc-raggen-go/document"
	"trpc.group/trpc-go/trpc-raggen-go/fingerprint"
	"trpc.group/trpc-go/trpc-raggen-go/log"
	"trpc.group/trpc-go/trpc-raggen-go/metadata"
	"trpc.group/trpc-go/trpc-raggen-go/normalizer"
	"trpc.group/trpc-go/trpc-raggen-go/splitter"
	"trpc.group/trpc-go/trpc-raggen-go/tokenizer"

	// Import converters to trigger their init() functions for registration.
	_ "trpc.group/trpc-go/trpc-raggen-go/converter/docx"
	_ "trpc.group/trpc-go/trpc-raggen-go/converter/html"
	_ "trpc.group/trpc-go/trpc-raggen-go/converter/markdown"
	_ "trpc.group/trpc-go/trpc-raggen-go/converter/pdf"
)

// ErrFileNotFound is returned inside the pipeline when an input path does
// not exist. Like every document-level failure it is absorbed at the
// pipeline boundary and degrades that document's result to empty.
var ErrFileNotFound = errors.New("file not found")

// Generator is the document-processing pipeline. It is safe for
// concurrent use: every stage is a pure function of one document plus
// read-only configuration, and cache writes are atomic.
type Generator struct {
	cache       *cache.Cache
	normalizer  *normalizer.Normalizer
	splitter    *splitter.Splitter
	fuser       *metadata.Fuser
	embedMeta   bool
	fieldNames  map[string]string
	parallelism int
}

// New creates a generator with the given options.
func New(opts ...Option) (*Generator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	counter := cfg.counter
	if counter == nil {
		tiktoken, err := tokenizer.NewTiktokenCounter(cfg.tokenizerModel)
		if err != nil {
			log.Warnf("failed to load tiktoken encoding, counting runes instead: %v", err)
			counter = tokenizer.RuneCounter{}
		} else {
			counter = tiktoken
		}
	}

	stageCache, err := cache.New(cfg.cacheDir)
	if err != nil {
		return nil, err
	}

	normOpts := []normalizer.Option{
		normalizer.WithMaxHeadingLevel(cfg.maxHeadingLevel),
		normalizer.WithMaxAttempts(cfg.correctAttempts),
	}
	if cfg.corrector != nil {
		normOpts = append(normOpts, normalizer.WithCorrector(cfg.corrector))
	}
	if cfg.correctBackoff != nil {
		normOpts = append(normOpts, normalizer.WithRetryBackoff(cfg.correctBackoff))
	}

	fuserOpts := []metadata.Option{
		metadata.WithPlacement(cfg.placement),
		metadata.WithCounter(counter),
	}
	if cfg.template != "" {
		fuserOpts = append(fuserOpts, metadata.WithTemplate(cfg.template))
	}
	if cfg.fieldNames != nil {
		fuserOpts = append(fuserOpts, metadata.WithFieldNames(cfg.fieldNames))
	}
	fuser, err := metadata.New(fuserOpts...)
	if err != nil {
		return nil, err
	}

	return &Generator{
		cache:      stageCache,
		normalizer: normalizer.New(normOpts...),
		splitter: splitter.New(
			splitter.WithChunkSize(cfg.chunkSize),
			splitter.WithChunkOverlap(cfg.chunkOverlap),
			splitter.WithPreserveTables(cfg.preserveTables),
			splitter.WithCounter(counter),
		),
		fuser:       fuser,
		embedMeta:   cfg.embedMeta,
		fieldNames:  cfg.fieldNames,
		parallelism: cfg.parallelism,
	}, nil
}

// Process runs the pipeline for one input document and returns its
// chunks. Document-level failures (missing file, unsupported format,
// conversion error) are logged and yield an empty result with a nil
// error; cache storage failures propagate.
func (g *Generator) Process(ctx context.Context, input document.Input) ([]*document.Document, error) {
	docs, err := g.processDocument(ctx, input)
	if err != nil {
		if errors.Is(err, cache.ErrIO) {
			return nil, err
		}
		log.Errorf("failed to process document %s: %v", input.Path, err)
		return nil, nil
	}
	return docs, nil
}

// ProcessFile runs the pipeline for one file path without caller metadata.
func (g *Generator) ProcessFile(ctx context.Context, path string) ([]*document.Document, error) {
	return g.Process(ctx, document.Input{Path: path})
}

// ProcessBatch runs the pipeline for a list of inputs, returning one
// chunk list per input that produced chunks, in input order. Documents
// are processed on a worker pool; failed or empty documents are dropped
// from the result, mirroring single-document Process semantics.
func (g *Generator) ProcessBatch(ctx context.Context, inputs []document.Input) ([][]*document.Document, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	batchID := uuid.NewString()
	log.Infof("processing batch %s: %d documents, parallelism %d", batchID, len(inputs), g.parallelism)

	pool, err := ants.NewPool(g.parallelism)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([][]*document.Document, len(inputs))
	errs := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		i, input := i, input
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i], errs[i] = g.Process(ctx, input)
		})
		if submitErr != nil {
			// Pool rejected the task; run it inline so the batch stays complete.
			results[i], errs[i] = g.Process(ctx, input)
			wg.Done()
		}
	}
	wg.Wait()

	var output [][]*document.Document
	for i := range inputs {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if len(results[i]) > 0 {
			output = append(output, results[i])
		}
	}
	log.Infof("batch %s complete: %d of %d documents produced chunks", batchID, len(output), len(inputs))
	return output, nil
}

// GenerateDataset flattens a batch into one chunk list, tagging every
// chunk with the index of the source document that produced it under the
// "domain" metadata key.
func (g *Generator) GenerateDataset(ctx context.Context, inputs []document.Input) ([]*document.Document, error) {
	batches, err := g.ProcessBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}
	var dataset []*document.Document
	for domain, docs := range batches {
		for _, doc := range docs {
			tagged := doc.Clone()
			if tagged.Metadata == nil {
				tagged.Metadata = make(map[string]any, 1)
			}
			tagged.Metadata[document.MetaDomain] = domain
			dataset = append(dataset, tagged)
		}
	}
	return dataset, nil
}

// Clean clears one cache namespace, or the whole cache when ns is empty.
func (g *Generator) Clean(ns cache.Namespace) error {
	return g.cache.Clean(ns)
}

// processDocument locates, converts and chunks one document.
func (g *Generator) processDocument(ctx context.Context, input document.Input) ([]*document.Document, error) {
	if _, err := os.Stat(input.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, input.Path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", input.Path, err)
	}

	ext := filepath.Ext(input.Path)
	kind := converter.KindForExtension(ext)
	if kind == converter.FormatUnknown {
		return nil, fmt.Errorf("%w: %q for file %s", converter.ErrUnsupportedFormat, ext, input.Path)
	}

	// Markdown is the pipeline's working format; it skips the convert stage.
	var text string
	if kind == converter.FormatMarkdown {
		data, err := os.ReadFile(input.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", input.Path, err)
		}
		text = string(data)
	} else {
		var err error
		text, err = g.convert(input.Path, kind)
		if err != nil {
			return nil, err
		}
	}

	return g.processText(ctx, text, input.Metadata)
}

// convert turns a non-markdown file into markdown text, memoized in the
// convert namespace under the file-content fingerprint.
func (g *Generator) convert(path string, kind converter.FormatKind) (string, error) {
	key, err := fingerprint.HashFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}
	if text, ok, err := g.cache.LoadText(cache.NamespaceConvert, key); err != nil {
		return "", err
	} else if ok {
		log.Debugf("convert cache hit for %s", path)
		return text, nil
	}

	conv, ok := converter.GetConverter(kind)
	if !ok {
		return "", fmt.Errorf("%w: no converter registered for %s", converter.ErrUnsupportedFormat, kind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := conv.Convert(data)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", path, err)
	}

	if err := g.cache.SaveText(cache.NamespaceConvert, key, text); err != nil {
		return "", err
	}
	return text, nil
}

// processText normalizes, splits and fuses one markdown text. The rag
// cache key combines the source text with the caller metadata and field
// name configuration, because the same text fused with different metadata
// must not collide.
func (g *Generator) processText(ctx context.Context, text string, meta map[string]any) ([]*document.Document, error) {
	ragKey, err := g.ragKey(text, meta)
	if err != nil {
		return nil, err
	}
	if docs, ok, err := g.cache.LoadDocuments(ragKey); err != nil {
		return nil, err
	} else if ok {
		log.Debugf("rag cache hit")
		return docs, nil
	}

	processed, err := g.normalize(ctx, text)
	if err != nil {
		return nil, err
	}

	docs := g.splitter.Split(processed)
	if len(meta) > 0 {
		docs = g.fuser.AddMetadata(docs, meta)
	}
	if g.embedMeta {
		docs, err = g.fuser.EmbedMetadata(docs)
		if err != nil {
			return nil, err
		}
	}

	if err := g.cache.SaveDocuments(ragKey, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// normalize corrects heading levels, memoized in the process namespace
// under the pre-normalization text fingerprint. On a cache hit the
// normalization work, including any LLM-assisted correction, never runs.
func (g *Generator) normalize(ctx context.Context, text string) (string, error) {
	key := fingerprint.HashText(text)
	if processed, ok, err := g.cache.LoadText(cache.NamespaceProcess, key); err != nil {
		return "", err
	} else if ok {
		log.Debugf("process cache hit")
		return processed, nil
	}

	processed, outcome := g.normalizer.Normalize(ctx, text)
	log.Debugf("normalized headings with %s strategy", outcome.Strategy)

	if err := g.cache.SaveText(cache.NamespaceProcess, key, processed); err != nil {
		return "", err
	}
	return processed, nil
}

// ragKey fingerprints the source text concatenated with the canonical
// JSON of the caller metadata and of the field-name configuration.
func (g *Generator) ragKey(text string, meta map[string]any) (fingerprint.Fingerprint, error) {
	full := text
	if len(meta) > 0 {
		encoded, err := json.Marshal(meta)
		if err != nil {
			return fingerprint.Fingerprint{}, fmt.Errorf("failed to encode metadata: %w", err)
		}
		full += string(encoded)
	}
	if g.embedMeta {
		encoded, err := json.Marshal(g.fieldNames)
		if err != nil {
			return fingerprint.Fingerprint{}, fmt.Errorf("failed to encode field names: %w", err)
		}
		full += string(encoded)
	}
	return fingerprint.HashText(full), nil
}
