package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanban-tech/vanban/internal/utils"
)

func TestParseBox(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    utils.Box
		wantErr bool
	}{
		{"plain", "10,20,110,60", utils.NewBox(10, 20, 110, 60), false},
		{"spaces", "10, 20, 110, 60", utils.NewBox(10, 20, 110, 60), false},
		{"reversed corners", "110,60,10,20", utils.NewBox(10, 20, 110, 60), false},
		{"too few", "10,20,110", utils.Box{}, true},
		{"not a number", "10,20,abc,60", utils.Box{}, true},
		{"empty", "", utils.Box{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBox(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Contains(t, out.String(), "vanban")
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vanban.yaml")
	var out bytes.Buffer
	configInitCmd.SetOut(&out)

	require.NoError(t, configInitCmd.RunE(configInitCmd, []string{path}))
	assert.Contains(t, out.String(), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// A second init against the same path must fail.
	assert.Error(t, configInitCmd.RunE(configInitCmd, []string{path}))
}
