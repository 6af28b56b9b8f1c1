// Package hashservice provides streamed, constant-memory
// SHA-256/SHA-1/MD5 over files and byte sequences, memoised per
// (algorithm, canonical absolute path), plus the SPDX 2.3 package
// verification code.
package hashservice

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Heimdall-SBOM/heimdall-sub003/internal/herrors"
)

// Algorithm identifies a supported digest function.
type Algorithm int

const (
	SHA256 Algorithm = iota
	SHA1
	MD5
)

const blockSize = 64 * 1024

// Service streams digests over files of arbitrary size and memoises
// results for the lifetime of a run. The memoisation key is the
// canonicalised absolute path, so relative paths and symlink aliases
// cannot produce two different cache entries for the same file.
//
// Service assumes a single mutator, matching the component store's
// concurrency contract; a sync.Mutex guards the cache because the link
// event sink and the compiler metadata loader may both hit it from the
// same (single) execution context across readers.
type Service struct {
	mu    sync.Mutex
	cache map[cacheKey]string
}

type cacheKey struct {
	alg  Algorithm
	path string
}

// New returns an empty hashing Service.
func New() *Service {
	return &Service{cache: make(map[cacheKey]string)}
}

func newHasher(alg Algorithm) hash.Hash {
	switch alg {
	case SHA1:
		return sha1.New()
	case MD5:
		return md5.New()
	default:
		return sha256.New()
	}
}

// HashFile computes the hex digest of path under alg, using the memoised
// value if present.
func (s *Service) HashFile(path string, alg Algorithm) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", herrors.New(herrors.IoError, "hashservice.HashFile", path, err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		// File may not exist yet on a symlink-resolution failure path
		// that isn't itself fatal for hashing intent; fall back to the
		// absolute (unresolved) path so memoisation still works within
		// this run.
		if absFallback, aerr := filepath.Abs(path); aerr == nil {
			abs = absFallback
		}
	}

	key := cacheKey{alg: alg, path: abs}
	s.mu.Lock()
	if v, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return "", herrors.New(herrors.IoError, "hashservice.HashFile", path, err)
	}
	defer f.Close()

	h := newHasher(alg)
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", herrors.New(herrors.IoError, "hashservice.HashFile", path, err)
	}
	digest := hex.EncodeToString(h.Sum(nil))

	s.mu.Lock()
	s.cache[key] = digest
	s.mu.Unlock()
	return digest, nil
}

// HashBytes computes the hex digest of data under alg without touching the
// memoisation cache (there is no path identity to key on).
func HashBytes(data []byte, alg Algorithm) string {
	h := newHasher(alg)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// VerificationCode computes the SPDX 2.3 package verification code:
// the SHA-1 of the concatenation, in ascending lexical
// order, of the SHA-1 hex digests of every included file's content.
// excludedNames lists files deliberately left out of the package (e.g.
// generated manifests), appended to the value per the SPDX documented
// format, e.g. "(excludes: foo.txt,bar.txt)".
func (s *Service) VerificationCode(includedPaths []string, excludedNames []string) (string, error) {
	digests := make([]string, 0, len(includedPaths))
	for _, p := range includedPaths {
		d, err := s.HashFile(p, SHA1)
		if err != nil {
			return "", err
		}
		digests = append(digests, d)
	}
	sort.Strings(digests)

	concatenated := ""
	for _, d := range digests {
		concatenated += d
	}
	h := sha1.New()
	h.Write([]byte(concatenated))
	code := hex.EncodeToString(h.Sum(nil))

	if len(excludedNames) == 0 {
		return code, nil
	}
	excluded := append([]string(nil), excludedNames...)
	sort.Strings(excluded)
	out := code + " (excludes: "
	for i, n := range excluded {
		if i > 0 {
			out += ","
		}
		out += n
	}
	out += ")"
	return out, nil
}
