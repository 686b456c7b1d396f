// Package bust computes cachebust tokens for static files. A token is the
// concatenation of a cheap modification-time fingerprint and a content digest,
// base32-encoded so it is safe inside both filenames and query strings.
package bust

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"lukechampine.com/blake3"
)

// DefaultAlgorithm is used when the configured hash function is unknown.
const DefaultAlgorithm = "crc32"

// statPartMax caps the fingerprint portion of a token.
const statPartMax = 4

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

type digestFunc func([]byte) []byte

var digesters = map[string]digestFunc{
	"crc32": func(data []byte) []byte {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], crc32.ChecksumIEEE(data))
		return buf[:]
	},
	"md5": func(data []byte) []byte {
		sum := md5.Sum(data)
		return sum[:]
	},
	"sha1": func(data []byte) []byte {
		sum := sha1.Sum(data)
		return sum[:]
	},
	"sha256": func(data []byte) []byte {
		sum := sha256.Sum256(data)
		return sum[:]
	},
	"sha512": func(data []byte) []byte {
		sum := sha512.Sum512(data)
		return sum[:]
	},
	"blake3": func(data []byte) []byte {
		sum := blake3.Sum256(data)
		return sum[:]
	},
}

// SplitLength splits a total token length into its fingerprint and digest
// part lengths.
func SplitLength(total int) (statLen, hashLen int) {
	statLen = total / 2
	if statLen > statPartMax {
		statLen = statPartMax
	}
	return statLen, total - statLen
}

type cacheEntry struct {
	fingerprint string
	subToken    string
}

// Buster computes bust tokens. It caches per-path sub-tokens for the duration
// of one run, keyed by the mtime fingerprint, so a file referenced from many
// places is hashed once and an unchanged file is not re-read at all. Safe for
// concurrent use.
type Buster struct {
	digest  digestFunc
	statLen int
	hashLen int

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New creates a Buster for the named hash algorithm and total token length.
// An unknown algorithm falls back to crc32 with a warning; a non-positive
// token length is a configuration defect and returns an error.
func New(algorithm string, tokenLength int) (*Buster, error) {
	if tokenLength <= 0 {
		return nil, fmt.Errorf("invalid token length %d: must be positive", tokenLength)
	}
	digest, ok := digesters[strings.ToLower(algorithm)]
	if !ok {
		slog.Warn("Unknown hash function, falling back",
			"algorithm", algorithm, "fallback", DefaultAlgorithm)
		digest = digesters[DefaultAlgorithm]
	}
	statLen, hashLen := SplitLength(tokenLength)
	return &Buster{
		digest:  digest,
		statLen: statLen,
		hashLen: hashLen,
		cache:   make(map[string]cacheEntry),
	}, nil
}

// TokenLength returns the total length of generated tokens.
func (b *Buster) TokenLength() int {
	return b.statLen + b.hashLen
}

// Fingerprint returns the truncated modification-time part of a path's token
// without reading the file's content.
func (b *Buster) Fingerprint(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(fi.ModTime().UnixNano()))
	return truncate(encode(buf[:]), b.statLen), nil
}

// subToken returns fingerprint+digest for one path, consulting the cache. The
// cached value is reused only while the fingerprint is unchanged, on the
// assumption that a file's mtime moves whenever its content does.
func (b *Buster) subToken(path string) (string, error) {
	fp, err := b.Fingerprint(path)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	entry, ok := b.cache[path]
	b.mu.Unlock()
	if ok && entry.fingerprint == fp {
		return entry.subToken, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sub := fp + truncate(encode(b.digest(data)), b.hashLen)

	b.mu.Lock()
	b.cache[path] = cacheEntry{fingerprint: fp, subToken: sub}
	b.mu.Unlock()
	return sub, nil
}

// Token computes the bust token for a set of resolved paths. A single path
// yields its sub-token directly. Multiple paths are combined by hashing the
// concatenation of their sub-tokens in sorted path order, so the token stays
// fixed-length yet changes when any variant file changes.
func (b *Buster) Token(paths []string) (string, error) {
	switch len(paths) {
	case 0:
		return "", fmt.Errorf("no paths to bust")
	case 1:
		return b.subToken(paths[0])
	}

	ordered := make([]string, len(paths))
	copy(ordered, paths)
	sort.Strings(ordered)

	var combined strings.Builder
	for _, p := range ordered {
		sub, err := b.subToken(p)
		if err != nil {
			return "", err
		}
		combined.WriteString(sub)
	}
	tok := encode(b.digest([]byte(combined.String())))
	return truncate(tok, b.statLen+b.hashLen), nil
}

func encode(data []byte) string {
	return strings.ToLower(b32.EncodeToString(data))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
