// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// FormatZip selects zip extraction.
	FormatZip Format = "zip"
	// FormatTarGzip selects gzip-compressed tar extraction.
	FormatTarGzip Format = "tar.gz"

	// maxEntryBytes is the upper bound on a single extracted entry (1 GB).
	// Prevents decompression bombs from filling the disk.
	maxEntryBytes = 1 << 30
)

var (
	// ErrExtraction is the sentinel wrapped by ExtractionError.
	ErrExtraction = errors.New("archive extraction failed")

	errPathEscapes   = errors.New("path escapes destination directory")
	errEntryTooLarge = fmt.Errorf("entry exceeds %d bytes", maxEntryBytes)
)

type (
	// Format identifies an archive container format.
	Format string

	// ExtractionError is returned when an archive is corrupt or contains an
	// entry that cannot be written safely. It wraps ErrExtraction.
	ExtractionError struct {
		Archive string
		Entry   string // empty when the failure is not tied to one entry
		Err     error
	}
)

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Entry != "" {
		return fmt.Sprintf("extracting %s: entry %q: %v", e.Archive, e.Entry, e.Err)
	}
	return fmt.Sprintf("extracting %s: %v", e.Archive, e.Err)
}

// Unwrap exposes both ErrExtraction and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExtraction}
	}
	return []error{ErrExtraction, e.Err}
}

// DetectFormat selects the container format from the archive file name.
// Anything that does not end in ".zip" is treated as a gzip-compressed tar.
func DetectFormat(archivePath string) Format {
	if strings.HasSuffix(strings.ToLower(archivePath), ".zip") {
		return FormatZip
	}
	return FormatTarGzip
}

// Extract unpacks archivePath into destDir, creating destDir if needed. It
// returns the slash-separated paths, relative to destDir, of every
// non-directory entry it wrote, in archive order.
//
// Entries that would land outside destDir are rejected: absolute names, ".."
// segments, writes through an existing symlink, and links that point
// outside destDir or do not resolve once every entry is written.
func Extract(archivePath, destDir string) ([]string, error) {
	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolving destination %s: %w", destDir, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination %s: %w", root, err)
	}

	switch DetectFormat(archivePath) {
	case FormatZip:
		return extractZip(archivePath, root)
	case FormatTarGzip:
		return extractTarGzip(archivePath, root)
	}
	return nil, &ExtractionError{Archive: archivePath, Err: errors.New("unsupported archive format")}
}

func extractZip(archivePath, root string) (_ []string, err error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: err}
	}
	defer func() {
		if closeErr := zr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var written []string
	for _, file := range zr.File {
		target, joinErr := safeJoin(root, file.Name)
		if joinErr != nil {
			return nil, &ExtractionError{Archive: archivePath, Entry: file.Name, Err: joinErr}
		}

		if file.FileInfo().IsDir() {
			if mkErr := mkdirInside(root, target); mkErr != nil {
				return nil, &ExtractionError{Archive: archivePath, Entry: file.Name, Err: mkErr}
			}
			continue
		}

		if wErr := writeZipEntry(root, target, file); wErr != nil {
			return nil, &ExtractionError{Archive: archivePath, Entry: file.Name, Err: wErr}
		}
		written = append(written, relSlash(root, target))
	}

	return written, nil
}

func writeZipEntry(root, target string, file *zip.File) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return writeRegular(root, target, rc, file.Mode())
}

func extractTarGzip(archivePath, root string) (_ []string, err error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: err}
	}
	defer func() { _ = f.Close() }() // read-only file handle

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, &ExtractionError{Archive: archivePath, Err: err}
	}
	defer func() { _ = gz.Close() }() // read-only gzip stream

	var written, links []string
	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return nil, &ExtractionError{Archive: archivePath, Err: nextErr}
		}

		// GitHub source archives start with a pax global header carrying the commit id.
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		target, joinErr := safeJoin(root, hdr.Name)
		if joinErr != nil {
			return nil, &ExtractionError{Archive: archivePath, Entry: hdr.Name, Err: joinErr}
		}

		var entryErr error
		switch hdr.Typeflag {
		case tar.TypeDir:
			entryErr = mkdirInside(root, target)
		case tar.TypeReg:
			entryErr = writeRegular(root, target, tr, hdr.FileInfo().Mode())
		case tar.TypeSymlink:
			entryErr = writeSymlink(root, target, hdr.Linkname)
		case tar.TypeLink:
			entryErr = writeHardlink(root, target, hdr.Linkname)
		default:
			// Devices, fifos and other special files have no place in a source archive.
			continue
		}
		if entryErr != nil {
			return nil, &ExtractionError{Archive: archivePath, Entry: hdr.Name, Err: entryErr}
		}
		if hdr.Typeflag != tar.TypeDir {
			written = append(written, relSlash(root, target))
		}
		if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
			links = append(links, relSlash(root, target))
		}
	}

	if err := verifyLinks(archivePath, root, links); err != nil {
		return nil, err
	}
	return written, nil
}

// safeJoin resolves an archive entry name against root and rejects names
// that would resolve outside of it.
func safeJoin(root, name string) (string, error) {
	if name == "" {
		return "", errors.New("empty entry name")
	}
	native := filepath.FromSlash(name)
	if filepath.IsAbs(native) || filepath.VolumeName(native) != "" || strings.HasPrefix(name, "/") {
		return "", errPathEscapes
	}

	target := filepath.Join(root, native)
	if !within(root, target) {
		return "", errPathEscapes
	}
	return target, nil
}

// within reports whether target is root or lies beneath it.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// checkParents fails if any existing directory between root and target is a
// symlink, so a previously extracted link cannot redirect later writes.
func checkParents(root, target string) error {
	rel, err := filepath.Rel(root, filepath.Dir(target))
	if err != nil {
		return errPathEscapes
	}
	if rel == "." {
		return nil
	}

	current := root
	for part := range strings.SplitSeq(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, statErr := os.Lstat(current)
		if errors.Is(statErr, fs.ErrNotExist) {
			return nil
		}
		if statErr != nil {
			return statErr
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return errPathEscapes
		}
	}
	return nil
}

func mkdirInside(root, target string) error {
	if err := checkParents(root, target); err != nil {
		return err
	}
	return os.MkdirAll(target, 0o755)
}

// prepareLeaf creates the parent directories of target and removes any
// non-directory already present at target.
func prepareLeaf(root, target string) error {
	if err := checkParents(root, target); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	info, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is an existing directory", target)
	}
	return os.Remove(target)
}

func writeRegular(root, target string, src io.Reader, mode fs.FileMode) (err error) {
	if err := prepareLeaf(root, target); err != nil {
		return err
	}

	perm := mode.Perm() | 0o600
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	n, err := io.Copy(dst, io.LimitReader(src, maxEntryBytes+1))
	if err != nil {
		return err
	}
	if n > maxEntryBytes {
		return errEntryTooLarge
	}
	return nil
}

func writeSymlink(root, target, linkname string) error {
	if linkname == "" || filepath.IsAbs(filepath.FromSlash(linkname)) || strings.HasPrefix(linkname, "/") {
		return errPathEscapes
	}
	if err := checkLinkTarget(root, filepath.Dir(target), linkname); err != nil {
		return err
	}
	if err := prepareLeaf(root, target); err != nil {
		return err
	}
	return os.Symlink(filepath.FromSlash(linkname), target)
}

// checkLinkTarget walks linkname from dir one segment at a time. Every
// intermediate path must stay under root and must not be an existing
// symlink, so a link cannot climb out through an earlier extracted link.
func checkLinkTarget(root, dir, linkname string) error {
	current := dir
	for part := range strings.SplitSeq(filepath.FromSlash(linkname), string(filepath.Separator)) {
		switch part {
		case "", ".":
			continue
		case "..":
			current = filepath.Dir(current)
		default:
			current = filepath.Join(current, part)
		}
		if !within(root, current) {
			return errPathEscapes
		}

		info, err := os.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return errPathEscapes
		}
	}
	return nil
}

// verifyLinks resolves every extracted link once the archive is fully
// written. Links created before the entries they pass through, and hard
// links to symlinks, are only caught here.
func verifyLinks(archivePath, root string, links []string) error {
	if len(links) == 0 {
		return nil
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}

	for _, rel := range links {
		target := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Lstat(target)
		if err != nil {
			return &ExtractionError{Archive: archivePath, Entry: rel, Err: err}
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			return &ExtractionError{Archive: archivePath, Entry: rel, Err: fmt.Errorf("unresolvable link: %w", err)}
		}
		if !within(realRoot, resolved) {
			return &ExtractionError{Archive: archivePath, Entry: rel, Err: errPathEscapes}
		}
	}
	return nil
}

func writeHardlink(root, target, linkname string) error {
	source, err := safeJoin(root, linkname)
	if err != nil {
		return err
	}
	if err := checkParents(root, source); err != nil {
		return err
	}
	if err := prepareLeaf(root, target); err != nil {
		return err
	}
	return os.Link(source, target)
}

func relSlash(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// SortByDepth orders slash-separated paths shallowest first, breaking ties
// lexically. It returns a new slice.
func SortByDepth(paths []string) []string {
	sorted := slices.Clone(paths)
	slices.SortStableFunc(sorted, func(a, b string) int {
		da, db := strings.Count(a, "/"), strings.Count(b, "/")
		if da != db {
			return da - db
		}
		return strings.Compare(a, b)
	})
	return sorted
}
