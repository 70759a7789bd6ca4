package notes

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// absFiles checks that every path names an existing regular file and
// returns the absolute paths in input order.
func absFiles(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, sidecar.Wrap(sidecar.CodeInvalidArguments, err, "Invalid file path: %s", p)
		}

		info, err := os.Stat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, sidecar.InvalidArguments("File does not exist: %s", p)
		case err != nil:
			return nil, sidecar.Wrap(sidecar.CodeInvalidArguments, err, "Cannot access file: %s", p)
		case info.IsDir():
			return nil, sidecar.InvalidArguments("Expected file but got directory: %s", p)
		case !info.Mode().IsRegular():
			return nil, sidecar.InvalidArguments("Expected regular file: %s", p)
		}
		out = append(out, abs)
	}
	return out, nil
}

// outputPath checks the export destination. An existing file is refused
// unless overwrite is set; the returned flag reports that it must be
// removed before export.
func outputPath(path string, overwrite bool) (string, bool, error) {
	if path == "" {
		return "", false, sidecar.InvalidArguments("--output-path is required.")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, sidecar.Wrap(sidecar.CodeInvalidArguments, err, "Invalid output path: %s", path)
	}

	info, err := os.Lstat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return abs, false, nil
	case err != nil:
		return "", false, sidecar.Wrap(sidecar.CodeInvalidArguments, err, "Cannot access output path: %s", path)
	case info.IsDir():
		return "", false, sidecar.InvalidArguments("Expected file but got directory: %s", path)
	case !overwrite:
		return "", false, sidecar.InvalidArguments("Output file exists. Use --overwrite.")
	}
	return abs, true, nil
}
