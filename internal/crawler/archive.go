package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/scholar-crawler/internal/hash/sha256"
)

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileSystemArchive saves fetched listing pages to disk so a blocked or
// oddly shaped response can be inspected after the run.
type FileSystemArchive struct {
	root     string
	maxBytes int64
	hasher   Hasher
	logger   *zap.Logger
}

// NewFileSystemArchive returns an archive rooted at dir.
func NewFileSystemArchive(root string, maxBytes int64, logger *zap.Logger) (*FileSystemArchive, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("archive dir is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %s: %w", root, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemArchive{
		root:     root,
		maxBytes: maxBytes,
		hasher:   sha256.New(),
		logger:   logger,
	}, nil
}

// SaveHTML writes the HTML snapshot to disk and returns its path.
func (s *FileSystemArchive) SaveHTML(ctx context.Context, page Page) (string, error) {
	if page.ContentLength() == 0 {
		return "", fmt.Errorf("empty page body")
	}
	if s.maxBytes > 0 && int64(page.ContentLength()) > s.maxBytes {
		return "", fmt.Errorf("page size %d exceeds max %d", page.ContentLength(), s.maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	target := s.htmlFilePath(page)
	if err := os.WriteFile(target, page.Body, 0o600); err != nil {
		return "", fmt.Errorf("writing HTML to %s: %w", target, err)
	}
	s.logger.Debug("archived page", zap.String("url", page.URL), zap.String("path", target))
	return target, nil
}

func (s *FileSystemArchive) htmlFilePath(page Page) string {
	raw := page.FinalURL
	if raw == "" {
		raw = page.URL
	}
	return filepath.Join(s.root, safeBasename(raw, s.hasher.HashString(raw))+".html")
}

// safeBasename builds a readable file name from host and path, suffixed
// with part of digest so distinct query strings do not collide.
func safeBasename(raw, digest string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return digest
	}
	host := invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	p := strings.Trim(u.EscapedPath(), "/")
	if p == "" {
		p = "root"
	}
	p = invalidFilenameChars.ReplaceAllString(p, "_")
	return fmt.Sprintf("%s_%s_%s", host, p, digest[:16])
}
