// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/brpub/brpub/internal/testutil"
	"github.com/brpub/brpub/internal/vcs"
)

type (
	// fakeDownloader serves canned archive bytes and records requested URLs.
	fakeDownloader struct {
		mu   sync.Mutex
		data []byte
		err  error
		urls []string
	}

	// fakeRepo records version-control calls instead of running git.
	fakeRepo struct {
		mu       sync.Mutex
		dir      string
		tag      string
		tagErr   error
		branches []string
		staged   int
		commits  []string

		branchErr error
		commitErr error
	}
)

func (d *fakeDownloader) FetchToFile(_ context.Context, rawURL, dest string) ([]byte, error) {
	d.mu.Lock()
	d.urls = append(d.urls, rawURL)
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	if err := os.WriteFile(dest, d.data, 0o644); err != nil {
		return nil, err
	}
	return d.data, nil
}

func (r *fakeRepo) LatestTag(context.Context) (string, error) {
	if r.tagErr != nil {
		return "", r.tagErr
	}
	return r.tag, nil
}

func (r *fakeRepo) CreateBranch(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.branchErr != nil {
		return r.branchErr
	}
	r.branches = append(r.branches, name)
	return nil
}

func (r *fakeRepo) StageAll(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staged++
	return nil
}

func (r *fakeRepo) Commit(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		return r.commitErr
	}
	r.commits = append(r.commits, message)
	return nil
}

// repoSet hands out one fakeRepo per directory.
type repoSet map[string]*fakeRepo

func (s repoSet) factory() RepositoryFactory {
	return func(dir string) vcs.Repository {
		if r, ok := s[dir]; ok {
			return r
		}
		r := &fakeRepo{dir: dir}
		s[dir] = r
		return r
	}
}

func tarGz(t *testing.T, files ...testutil.ArchiveEntry) []byte {
	t.Helper()
	return testutil.TarGz(t, files...)
}

func zipArchive(t *testing.T, files ...testutil.ArchiveEntry) []byte {
	t.Helper()
	return testutil.Zip(t, files...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	testutil.MustWriteFile(t, path, content)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	return testutil.MustReadFile(t, path)
}
