package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goldenCase pins the listed record fields for one raw listing. Fields not
// named in Expect are not checked.
type goldenCase struct {
	Raw     string                 `json:"raw"`
	Options Options                `json:"options"`
	Expect  map[string]interface{} `json:"expect"`
}

func TestGoldenListings(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "golden", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ex := newTestExtractor(t)
	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			require.NoError(t, err)
			var tc goldenCase
			require.NoError(t, json.Unmarshal(data, &tc))

			rec := ex.Extract(tc.Raw, tc.Options)
			encoded, err := json.Marshal(rec)
			require.NoError(t, err)
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(encoded, &got))

			for field, want := range tc.Expect {
				assert.Equal(t, want, got[field], "field %s of %q", field, tc.Raw)
			}
		})
	}
}
