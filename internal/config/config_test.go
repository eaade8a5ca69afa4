package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garethgeorge/memsim/internal/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int{200, 300, 100, 500, 50}, cfg.FirstFit.Blocks)
	assert.Equal(t, []int{50, 100, 200, 300, 500}, cfg.QuickFit.Classes)
	assert.Equal(t, 5, cfg.QuickFit.Population)
	assert.False(t, cfg.QuickFit.StrictRelease)
	assert.Equal(t, digest.Blake3, cfg.DigestAlgorithm())
	assert.Empty(t, cfg.QuickFitOptions())
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg Config)
		wantErr []string
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "partial overlay",
			yaml: "quickfit:\n  population: 2\n  strict_release: true\ntrace:\n  digest: sha256\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []int{200, 300, 100, 500, 50}, cfg.FirstFit.Blocks)
				assert.Equal(t, 2, cfg.QuickFit.Population)
				assert.True(t, cfg.QuickFit.StrictRelease)
				assert.Len(t, cfg.QuickFitOptions(), 1)
				assert.Equal(t, digest.SHA256, cfg.DigestAlgorithm())
			},
		},
		{
			name: "custom blocks",
			yaml: "firstfit:\n  blocks: [10, 20]\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []int{10, 20}, cfg.FirstFit.Blocks)
			},
		},
		{
			name:    "every problem reported",
			yaml:    "firstfit:\n  blocks: [10, -1]\nquickfit:\n  classes: [50, 50]\n  population: -3\ntrace:\n  digest: md5\n",
			wantErr: []string{"firstfit.blocks[1]", "quickfit.classes[1]", "quickfit.population", "trace.digest"},
		},
		{
			name:    "empty lists",
			yaml:    "firstfit:\n  blocks: []\nquickfit:\n  classes: []\n",
			wantErr: []string{"firstfit.blocks", "quickfit.classes"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Decode(strings.NewReader(tc.yaml))
			if tc.wantErr != nil {
				require.Error(t, err)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.wantErr, verr.Fields())
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestDecodeUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("firstfit:\n  blockz: [1]\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("firstfit:\n  blocks: [64, 128]\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{64, 128}, cfg.FirstFit.Blocks)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.QuickFit.StrictRelease = true
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "strict_release: true")

	got, err := Decode(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
