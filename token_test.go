package gridbase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  abc123  \nignored second line\n"), 0o600))

	token, err := TokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestTokenFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))

	_, err := TokenFromFile(path)
	require.Error(t, err)
}

func TestTokenFromFileMissing(t *testing.T) {
	_, err := TokenFromFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
