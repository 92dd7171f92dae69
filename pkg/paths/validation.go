package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for empty paths, null bytes, and other invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Common filesystem limit
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ContainsPath checks if child is contained within parent.
// Both paths are cleaned before comparison.
func ContainsPath(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// SafeJoin joins rel onto root and fails with ErrTraversalRejected when the
// result would leave root. rel must be relative.
func SafeJoin(root, rel string) (string, error) {
	if err := ValidatePath(rel); err != nil {
		return "", err
	}
	if filepath.IsAbs(rel) || !filepath.IsLocal(rel) {
		return "", errors.Newf(errors.ErrTraversalRejected, "%q escapes %s", rel, root).
			WithDetail("path", rel).
			WithDetail("root", root)
	}

	joined := filepath.Join(root, rel)
	if !ContainsPath(root, joined) {
		return "", errors.Newf(errors.ErrTraversalRejected, "%q escapes %s", rel, root).
			WithDetail("path", rel).
			WithDetail("root", root)
	}
	return joined, nil
}

// ResolveTarget resolves a symlink target read from link: relative targets are
// taken against the link's directory.
func ResolveTarget(link, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(filepath.Dir(link), target)
}
