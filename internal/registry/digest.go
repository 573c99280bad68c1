// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

// IntegrityPrefix is the algorithm prefix of every integrity string.
const IntegrityPrefix = "sha256-"

// Digest returns the integrity string for data: "sha256-" followed by the
// standard base64 encoding of the SHA256 hash.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return IntegrityPrefix + base64.StdEncoding.EncodeToString(sum[:])
}

// DigestFile computes the integrity string of the file at path. It streams the
// file through the hash function to avoid loading it into memory.
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }() // read-only file handle

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}

	return IntegrityPrefix + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
