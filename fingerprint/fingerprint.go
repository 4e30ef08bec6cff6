//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

// Package fingerprint provides deterministic content fingerprinting used as
// cache keys. Identical content always yields the identical fingerprint.
package fingerprint

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// Size is the fingerprint length in bytes (BLAKE2b-256).
const Size = 32

// readBlockSize bounds the amount of file content held in memory while
// hashing a stream.
const readBlockSize = 8192

// Fingerprint is a 256-bit BLAKE2b digest of content.
type Fingerprint [Size]byte

// String renders the fingerprint as 64 lowercase hex characters, the form
// used in cache file names.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether the fingerprint is the zero value.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// HashBytes fingerprints a byte slice in one shot.
func HashBytes(data []byte) Fingerprint {
	return blake2b.Sum256(data)
}

// HashText fingerprints the UTF-8 encoding of a string.
func HashText(text string) Fingerprint {
	return blake2b.Sum256([]byte(text))
}

// HashReader fingerprints a stream, reading it in bounded blocks so
// arbitrarily large inputs are never fully loaded into memory.
func HashReader(r io.Reader) (Fingerprint, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to create hasher: %w", err)
	}
	buf := make([]byte, readBlockSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return Fingerprint{}, fmt.Errorf("failed to hash stream: %w", err)
	}
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// HashFile fingerprints the content of the file at path.
func HashFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return HashReader(f)
}
