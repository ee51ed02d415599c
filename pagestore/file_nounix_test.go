//go:build !unix

package pagestore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileStore_Unsupported(t *testing.T) {
	t.Parallel()

	s, err := OpenFile(filepath.Join(t.TempDir(), "pages.dbx"), 64)
	require.Nil(t, s)
	require.True(t, errors.Is(err, errors.ErrUnsupported))

	var _ Store = (*FileStore)(nil)
}
