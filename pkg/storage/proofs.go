package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ProofStore persists payment-proof files on disk under a base directory and
// knows how to build the public URL handed back to registrants.
type ProofStore struct {
	baseDir       string
	publicBaseURL string
}

// NewProofStore ensures the base directory exists and returns a handle.
func NewProofStore(baseDir, publicBaseURL string) (*ProofStore, error) {
	if baseDir == "" {
		baseDir = "./payment-proofs"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create payment-proofs directory: %w", err)
	}
	return &ProofStore{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// NewObjectName builds a collision-resistant stored filename from the upload
// time, a short random suffix and the original file extension.
func (s *ProofStore) NewObjectName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
}

// Save writes the given bytes to the provided filename under the base dir.
func (s *ProofStore) Save(filename string, data []byte) (string, error) {
	target := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare proof directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write proof file: %w", err)
	}
	return filename, nil
}

// SaveStream copies from reader into the target file path.
func (s *ProofStore) SaveStream(filename string, r io.Reader) (string, error) {
	target := s.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare proof directory: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create proof file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write proof stream: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for the stored file.
func (s *ProofStore) Open(filename string) (*os.File, error) {
	file, err := os.Open(s.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("open proof file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *ProofStore) Delete(filename string) error {
	if err := os.Remove(s.resolve(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete proof file: %w", err)
	}
	return nil
}

// PublicURL returns the externally reachable URL for a stored filename.
func (s *ProofStore) PublicURL(filename string) string {
	return s.publicBaseURL + "/" + filename
}

// FilenameFromURL extracts the stored filename from a public proof URL.
// Returns an empty string when the URL does not point into the store.
func (s *ProofStore) FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "payment-proofs" {
		return ""
	}
	return name
}

// Dir exposes the base directory, used when mounting a static file route.
func (s *ProofStore) Dir() string {
	return s.baseDir
}

func (s *ProofStore) resolve(filename string) string {
	return filepath.Join(s.baseDir, filepath.Base(filename))
}
