package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budgea-salary/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidReportFormat(t *testing.T) {
	tests := []struct {
		format      string
		expectError bool
	}{
		{"csv", false},
		{"json", false},
		{"yaml", false},
		{"xlsx", false},
		{"xml", true},
		{"", true},
		{"CSV", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := validation.IsValidReportFormat(tt.format)
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported report format")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidFilePermissions(t *testing.T) {
	tests := []struct {
		name        string
		mode        os.FileMode
		expectError bool
	}{
		{"owner only", 0600, false},
		{"group readable", 0640, false},
		{"world readable", 0644, true},
		{"world writable", 0666, true},
		{"everything", 0777, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsValidFilePermissions(tt.mode)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckSecretFile(t *testing.T) {
	dir := t.TempDir()

	private := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(private, []byte("GEMINI_API_KEY=x\n"), 0600))
	assert.NoError(t, validation.CheckSecretFile(private))

	public := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(public, []byte("api: {}\n"), 0600))
	require.NoError(t, os.Chmod(public, 0644))
	err := validation.CheckSecretFile(public)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")

	assert.NoError(t, validation.CheckSecretFile(filepath.Join(dir, "missing")))
}
