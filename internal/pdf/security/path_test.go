package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	_, err := NewPathValidator("")
	assert.Error(t, err)

	v, err := NewPathValidator("/not/created/yet")
	require.NoError(t, err)
	assert.Equal(t, "/not/created/yet", v.GetConfiguredDirectory())
}

func TestPathValidator_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "forms"), 0o755))
	outside := t.TempDir()

	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative file", "form.pdf", filepath.Join(dir, "form.pdf"), false},
		{"nested relative", "forms/out.pdf", filepath.Join(dir, "forms", "out.pdf"), false},
		{"absolute inside", filepath.Join(dir, "a.pdf"), filepath.Join(dir, "a.pdf"), false},
		{"the directory itself", dir, dir, false},
		{"null bytes stripped", "form\x00.pdf", filepath.Join(dir, "form.pdf"), false},
		{"traversal", "../escape.pdf", "", true},
		{"absolute outside", filepath.Join(outside, "x.pdf"), "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Resolve(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathValidator_Symlinks(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.pdf")
	require.NoError(t, os.WriteFile(target, []byte("%PDF-1.7"), 0o644))

	link := filepath.Join(dir, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	v, err := NewPathValidator(dir)
	require.NoError(t, err)

	within, err := v.IsPathWithinDirectory(link)
	require.NoError(t, err)
	assert.False(t, within, "a symlink pointing outside is rejected")
	assert.Error(t, v.ValidatePath(link))
}

func TestPathValidator_MissingDirectoryAcceptsAll(t *testing.T) {
	v, err := NewPathValidator(filepath.Join(t.TempDir(), "later"))
	require.NoError(t, err)
	assert.NoError(t, v.ValidatePath("/anywhere/file.pdf"))
}
