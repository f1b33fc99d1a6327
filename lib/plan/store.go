// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. zstd.Encoder and zstd.Decoder are
// safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("plan: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("plan: zstd decoder initialization failed: " + err.Error())
	}
}

// Entry is one archived plan in the store index.
type Entry struct {
	// Stack is the stack the plan was previewed against.
	Stack string `json:"stack"`

	// Digest is the hex BLAKE3 digest of the uncompressed plan bytes.
	Digest string `json:"digest"`

	// CreatedAt is when the plan was archived.
	CreatedAt time.Time `json:"created_at"`

	// Size is the uncompressed plan size in bytes.
	Size int64 `json:"size"`
}

// Store is a directory of zstd-compressed plan files plus an
// index.json mapping stacks to digest history. Plans are addressed by
// digest; the newest entry per stack is retrievable via Latest.
type Store struct {
	dir string
}

// indexFile is the current index format on disk.
type indexFile struct {
	// Entries is ordered newest first.
	Entries []Entry `json:"entries"`
}

// NewStore opens (creating if needed) the plan store at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("plan: store directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("plan: creating store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Put archives plan bytes for a stack and returns the new entry. The
// same bytes re-archived produce the same digest and overwrite the
// same file; the index gains a fresh entry either way, so history
// records every preview.
func (s *Store) Put(stack string, data []byte) (*Entry, error) {
	digest := HashPlan(data)

	compressed := zstdEncoder.EncodeAll(data, nil)
	path := s.planPath(digest.String())
	if err := os.WriteFile(path, compressed, 0644); err != nil {
		return nil, fmt.Errorf("plan: writing %s: %w", path, err)
	}

	entry := Entry{
		Stack:     stack,
		Digest:    digest.String(),
		CreatedAt: time.Now().UTC(),
		Size:      int64(len(data)),
	}

	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	index.Entries = append([]Entry{entry}, index.Entries...)
	if err := s.writeIndex(index); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Get returns the uncompressed plan bytes for a hex digest.
func (s *Store) Get(digest string) ([]byte, error) {
	if _, err := ParseHash(digest); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.planPath(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plan: no archived plan with digest %s", digest)
		}
		return nil, fmt.Errorf("plan: reading plan %s: %w", digest, err)
	}

	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("plan: decompressing plan %s: %w", digest, err)
	}

	// Integrity check: the file content must match its name.
	if HashPlan(data).String() != digest {
		return nil, fmt.Errorf("plan: archived plan %s is corrupt (digest mismatch)", digest)
	}
	return data, nil
}

// Latest returns the most recent entry for a stack.
func (s *Store) Latest(stack string) (*Entry, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	for _, entry := range index.Entries {
		if entry.Stack == stack {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("plan: no archived plan for stack %q", stack)
}

// Resolve expands a hex digest prefix to the full digest of the single
// matching entry. Errors when the prefix matches nothing or is
// ambiguous.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("plan: empty digest prefix")
	}

	index, err := s.readIndex()
	if err != nil {
		return "", err
	}

	matches := make(map[string]bool)
	for _, entry := range index.Entries {
		if strings.HasPrefix(entry.Digest, prefix) {
			matches[entry.Digest] = true
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("plan: no archived plan matches %q", prefix)
	case 1:
		for digest := range matches {
			return digest, nil
		}
		panic("unreachable")
	default:
		return "", fmt.Errorf("plan: digest prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// Entries returns the full index, newest first.
func (s *Store) Entries() ([]Entry, error) {
	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	return index.Entries, nil
}

func (s *Store) planPath(digest string) string {
	return filepath.Join(s.dir, digest+".json.zst")
}

func (s *Store) indexPath() string {
	return filepath.Join(s.dir, "index.json")
}

func (s *Store) readIndex() (*indexFile, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &indexFile{}, nil
		}
		return nil, fmt.Errorf("plan: reading index: %w", err)
	}

	var index indexFile
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("plan: parsing index: %w", err)
	}
	return &index, nil
}

// writeIndex writes the index atomically (temp file + rename) so a
// crash mid-write cannot truncate the history.
func (s *Store) writeIndex(index *indexFile) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("plan: encoding index: %w", err)
	}

	temp := s.indexPath() + ".tmp"
	if err := os.WriteFile(temp, data, 0644); err != nil {
		return fmt.Errorf("plan: writing index: %w", err)
	}
	if err := os.Rename(temp, s.indexPath()); err != nil {
		return fmt.Errorf("plan: replacing index: %w", err)
	}
	return nil
}
