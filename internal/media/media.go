// Package media stores uploaded post images on the local filesystem.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PostsDir is the sub-directory of the media root that holds post images.
const PostsDir = "posts"

var extByFormat = map[string]string{
	"gif":  ".gif",
	"jpeg": ".jpg",
	"png":  ".png",
	"webp": ".webp",
}

// Store writes files below Root and hands back slash-separated paths
// relative to it, which is what posts persist and /media serves.
type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// SavePostImage writes data under a fresh name with the extension for
// format (as reported by image.DecodeConfig).
func (s *Store) SavePostImage(ctx context.Context, data []byte, format string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, ok := extByFormat[format]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	rel := PostsDir + "/" + uuid.NewString() + ext
	if err := writeBytesToFile(s.abs(rel), data); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	return rel, nil
}

// Remove deletes a previously saved file. Missing files are ignored.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(s.abs(rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) abs(rel string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(rel))
	return filepath.Join(s.Root, strings.TrimPrefix(clean, string(filepath.Separator)))
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
