package luck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBands_Valid(t *testing.T) {
	bands := DefaultBands()
	require.NoError(t, bands.Validate())
	assert.Equal(t, "Jackpot", bands.For(100).Title)
	assert.Equal(t, "Abysmal", bands.For(0).Title)
	assert.Equal(t, "Good", bands.For(57).Title)
	assert.Equal(t, "Abysmal", bands.For(-5).Title)
	assert.Equal(t, "Jackpot", bands.For(250).Title)
}

func TestParseBands_SortsAndValidates(t *testing.T) {
	bands, err := ParseBands([]byte(`
bands:
  - {min: 51, max: 100, title: High, message: up}
  - {min: 0, max: 50, title: Low, message: down}
`))
	require.NoError(t, err)
	require.Len(t, bands, 2)
	assert.Equal(t, "Low", bands[0].Title)
	assert.Equal(t, "High", bands.For(51).Title)
}

func TestParseBands_Errors(t *testing.T) {
	cases := map[string]string{
		"gap":      "bands:\n  - {min: 0, max: 10, title: A}\n  - {min: 12, max: 100, title: B}\n",
		"short":    "bands:\n  - {min: 0, max: 99, title: A}\n",
		"notitle":  "bands:\n  - {min: 0, max: 100}\n",
		"inverted": "bands:\n  - {min: 0, max: -1, title: A}\n",
		"empty":    "bands: []\n",
		"invalid":  "bands: [",
	}
	for name, data := range cases {
		_, err := ParseBands([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestLoadBands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bands.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bands:\n  - {min: 0, max: 100, title: All, message: any}\n"), 0o644))
	bands, err := LoadBands(path)
	require.NoError(t, err)
	assert.Equal(t, "All", bands.For(42).Title)

	_, err = LoadBands(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
