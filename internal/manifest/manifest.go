package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const DefaultPath = "image_list.json"

var ErrMissing = fmt.Errorf("manifest not found: %w", os.ErrNotExist)

// Write overwrites path with the ordered image paths.
func Write(path string, paths []string) error {
	if paths == nil {
		paths = []string{}
	}
	return runstore.WriteJSON(normalizePath(path), paths)
}

func Read(path string) ([]string, error) {
	path = normalizePath(path)
	var paths []string
	if err := runstore.ReadJSON(path, &paths); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPath
	}
	return path
}
