package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/tgadmin/internal/codec"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/stretchr/testify/require"
)

// WriteDocument creates name in a temporary directory with content and
// returns its absolute path. It fails the test immediately on error.
func WriteDocument(t *testing.T, name, content string) string {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join(t.TempDir(), name))
	require.NoError(t, err, "Failed to get absolute path for temp dir")
	require.NoError(t, os.WriteFile(absPath, []byte(content), 0o644), "Failed to write document")
	return absPath
}

// MustParse decodes content in format or fails the test.
func MustParse(t *testing.T, format domain.Format, content string) domain.Value {
	t.Helper()

	v, err := codec.New().Parse([]byte(content), format)
	require.NoError(t, err, "Failed to parse %s document", format)
	return v
}
