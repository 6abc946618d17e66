package kon_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kaiserthe13th/kon"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

const testdataDir = "internal/testutil/testdata"

func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(testdataDir, "*.kon"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			require.NoError(t, err)

			v, err := kon.Parse(src)

			var actual []byte
			if err != nil {
				// For documents that are expected to fail parsing,
				// the golden file will contain the error message.
				require.True(t, strings.HasPrefix(filepath.Base(file), "invalid-"), "unexpected error: %v", err)
				actual = []byte(err.Error())
			} else {
				// Valid documents are written back out in the pretty
				// layout, which must parse to the same tree.
				actual, err = kon.Marshal(v, kon.Pretty())
				require.NoError(t, err)

				again, err := kon.Parse(actual)
				require.NoError(t, err)
				requireValue(t, v, again)
			}

			goldenFile := strings.TrimSuffix(file, ".kon") + ".golden"
			if *update {
				err := os.WriteFile(goldenFile, append(actual, '\n'), 0o644)
				require.NoError(t, err)
			}

			expected, err := os.ReadFile(goldenFile)
			require.NoError(t, err, "Golden file not found. Run with -update to create it.")

			// Golden files end with a newline; the formatter does not.
			expected = bytes.TrimSuffix(expected, []byte("\n"))

			require.Equal(t, string(expected), string(actual), "Output does not match golden file.")
		})
	}
}
