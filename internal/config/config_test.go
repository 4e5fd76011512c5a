package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "params.json", `{
		"flow": {"level": 3},
		"tracker": {"algorithm": "kcf"},
		"cache_capacity": 4
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Flow.Level = 3
	want.Tracker.Algorithm = "kcf"
	want.CacheCapacity = 4
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"extension", "params.yaml", `{}`, ".json extension"},
		{"syntax", "bad.json", `{"flow":`, "parse config"},
		{"window", "win.json", `{"flow": {"win_size": {"width": 1, "height": 1}}}`, "win_size"},
		{"algorithm", "alg.json", `{"tracker": {"algorithm": "tld"}}`, "tracker.algorithm"},
		{"mser", "mser.json", `{"mser": {"min_area": 10, "max_area": 5}}`, "mser area"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_TooLarge(t *testing.T) {
	t.Parallel()
	body := make([]byte, 1024*1024+1)
	for i := range body {
		body[i] = ' '
	}
	_, err := Load(writeConfig(t, "big.json", string(body)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestDefault_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}
