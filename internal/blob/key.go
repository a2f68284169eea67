package blob

import (
	"fmt"
	"path"
	"strings"
)

// CleanKey rejects empty, absolute and traversing keys and normalizes separators.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if k == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(k, "/") {
		return "", fmt.Errorf("%w: absolute key %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(k, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: key %q contains '..'", ErrInvalidKey, key)
		}
	}
	return path.Clean(k), nil
}

// Join prefixes key with prefix (if any) using a single slash.
func Join(prefix, key string) string {
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		return key
	}
	return p + "/" + strings.TrimLeft(key, "/")
}
