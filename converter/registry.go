//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package converter

import "sync"

// Builder is a function that creates a new Converter instance.
type Builder func() Converter

// Registry manages registration of format converters keyed by format kind.
type Registry struct {
	mu       sync.RWMutex
	builders map[FormatKind]Builder
}

// globalRegistry is the singleton registry instance.
var globalRegistry = &Registry{
	builders: make(map[FormatKind]Builder),
}

// RegisterConverter registers a converter builder for a format kind.
// Converter subpackages call this from init().
func RegisterConverter(kind FormatKind, builder Builder) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.builders[kind] = builder
}

// GetConverter returns a new converter instance for the given format kind.
// Returns nil and false if no converter is registered for the kind.
func GetConverter(kind FormatKind) (Converter, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	builder, exists := globalRegistry.builders[kind]
	if !exists {
		return nil, false
	}
	return builder(), true
}

// ForExtension returns a converter for the given file extension.
// Unknown or unregistered extensions return ErrUnsupportedFormat.
func ForExtension(ext string) (Converter, error) {
	kind := KindForExtension(ext)
	if kind == FormatUnknown {
		return nil, ErrUnsupportedFormat
	}
	conv, ok := GetConverter(kind)
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return conv, nil
}

// RegisteredKinds returns the format kinds with a registered converter.
func RegisteredKinds() []FormatKind {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	kinds := make([]FormatKind, 0, len(globalRegistry.builders))
	for kind := range globalRegistry.builders {
		kinds = append(kinds, kind)
	}
	return kinds
}
