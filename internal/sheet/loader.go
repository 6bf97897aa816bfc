package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDirNotFound reports a missing sheet directory. Callers treat the
// dataset as empty and continue with the remaining sheets.
var ErrDirNotFound = errors.New("sheet directory not found")

// LoadDir parses every .xml file in dir and returns the concatenated
// top-level children of all files. Files are read in lexical name order,
// so later files win wherever collectors resolve duplicates by
// overwrite. Non-XML files are skipped. Malformed XML in any file fails
// the whole load.
func LoadDir(dir string) ([]Element, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("reading sheet dir %s: %w", dir, err)
	}

	var elems []Element
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		children, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		elems = append(elems, children...)
	}
	return elems, nil
}

func parseFile(path string) ([]Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sheet %s: %w", path, err)
	}
	defer f.Close()

	children, err := ParseSheet(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return children, nil
}
