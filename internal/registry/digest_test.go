// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDigest_KnownValue(t *testing.T) {
	t.Parallel()

	// sha256("") base64-encoded.
	const want = "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="
	if got := Digest(nil); got != want {
		t.Errorf("Digest(nil) = %q, want %q", got, want)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	t.Parallel()

	data := []byte("module(name = \"foo\")\n")
	first := Digest(data)
	second := Digest(append([]byte(nil), data...))
	if first != second {
		t.Errorf("Digest is not deterministic: %q != %q", first, second)
	}
	if !strings.HasPrefix(first, IntegrityPrefix) {
		t.Errorf("Digest() = %q, want prefix %q", first, IntegrityPrefix)
	}
}

func TestDigest_SingleBitChange(t *testing.T) {
	t.Parallel()

	data := []byte("release archive contents")
	flipped := append([]byte(nil), data...)
	flipped[0] ^= 0x01

	if Digest(data) == Digest(flipped) {
		t.Error("Digest did not change after flipping one bit")
	}
}

func TestDigestFile_MatchesDigest(t *testing.T) {
	t.Parallel()

	data := []byte("some bytes on disk")
	path := filepath.Join(t.TempDir(), "blob")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := DigestFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := Digest(data); got != want {
		t.Errorf("DigestFile() = %q, want %q", got, want)
	}
}

func TestDigestFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := DigestFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing file")
	}
}
