package transfer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// previewMarker tags a file key as a preview of the base file whose key
// precedes the marker.
const previewMarker = ".previewFile."

// allowedPreviewExtensions lists the image formats accepted as previews.
var allowedPreviewExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".svg":  true,
	".gif":  true,
}

// FileInfo describes a local file staged for upload. Immutable once built.
type FileInfo struct {
	LocalPath   string
	Key         string // remote relative path
	Size        int64
	ContentType string
	Preview     bool
}

// NewFileInfo stats the local file, sniffs its content type and derives the
// preview flag from the key's naming convention.
func NewFileInfo(localPath, key string) (FileInfo, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("path is not a file: %s", localPath)
	}

	contentType := "application/octet-stream"
	if info.Size() > 0 {
		if mt, err := mimetype.DetectFile(localPath); err == nil {
			contentType = mt.String()
		}
	}

	return FileInfo{
		LocalPath:   localPath,
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		Preview:     strings.Contains(key, previewMarker),
	}, nil
}

// normalizePrefix turns an asset-relative location into a clean "a/b/" form.
func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// CollectDirectory discovers files under dir, keyed relative to dir and
// joined under the given asset-relative prefix. Non-recursive collection
// only picks up direct children.
func CollectDirectory(dir string, recursive bool, prefix string) ([]FileInfo, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("directory not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	prefix = normalizePrefix(prefix)

	var files []FileInfo
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		fi, err := NewFileInfo(path, prefix+filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		files = append(files, fi)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found in directory: %s", dir)
	}

	return files, nil
}

// CollectFiles builds FileInfos from an explicit path list, keying each file
// by its base name under the prefix. Duplicate base names are rejected since
// they would collide on the remote side.
func CollectFiles(paths []string, prefix string) ([]FileInfo, error) {
	prefix = normalizePrefix(prefix)

	seen := make(map[string]bool, len(paths))
	files := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if seen[name] {
			return nil, fmt.Errorf("duplicate filename %q: each file in an upload must have a unique name", name)
		}
		seen[name] = true

		fi, err := NewFileInfo(p, prefix+name)
		if err != nil {
			return nil, err
		}
		files = append(files, fi)
	}

	return files, nil
}

// ValidateForUpload enforces the static per-file constraints: preview files
// must stay under the preview size cap and use an allowed image extension.
func ValidateForUpload(f FileInfo, limits Limits) error {
	if !f.Preview {
		return nil
	}
	if f.Size > limits.MaxPreviewFileBytes {
		return fmt.Errorf("preview file %s exceeds maximum size of %d bytes (actual: %d)",
			f.Key, limits.MaxPreviewFileBytes, f.Size)
	}
	ext := strings.ToLower(filepath.Ext(f.Key))
	if !allowedPreviewExtensions[ext] {
		return fmt.Errorf("preview file %s has unsupported extension %q", f.Key, ext)
	}
	return nil
}

// ValidatePreviewPairs checks that every preview file is accompanied by its
// base file in the same upload. Returns the orphaned preview keys.
func ValidatePreviewPairs(files []FileInfo) []string {
	baseKeys := make(map[string]bool)
	for _, f := range files {
		if !f.Preview {
			baseKeys[f.Key] = true
		}
	}

	var orphans []string
	for _, f := range files {
		if !f.Preview {
			continue
		}
		base, _, _ := strings.Cut(f.Key, previewMarker)
		if !baseKeys[base] {
			orphans = append(orphans, f.Key)
		}
	}
	return orphans
}
