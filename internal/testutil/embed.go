package testutil

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// TestdataFS holds the embedded test data files.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData reads and returns the content of an embedded test file.
func ReadTestData(name string) ([]byte, error) {
	data, err := fs.ReadFile(TestdataFS, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read test data file '%s': %w", name, err)
	}
	return data, nil
}

// TestDataFiles returns the names of the embedded files matching pattern,
// sorted.
func TestDataFiles(pattern string) ([]string, error) {
	matches, err := fs.Glob(TestdataFS, path.Join("testdata", pattern))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = path.Base(m)
	}
	sort.Strings(names)
	return names, nil
}
