package storage

import (
	"path/filepath"
	"testing"

	"github.com/Dan9191/leads-service/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("resume content")
	path, err := store.Save("john.doe@example.com", "resume.pdf", content)
	require.NoError(t, err)
	require.Equal(t, "john.doe@example.com_resume.pdf", filepath.Base(path))

	data, err := store.Get(path)
	require.NoError(t, err)
	require.Equal(t, content, data)
}

func TestSave_StripsDirectoryComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	path, err := store.Save("a@example.com", "../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
}

func TestGet_Missing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(filepath.Join(t.TempDir(), "nope.pdf"))
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestContentTypeFor(t *testing.T) {
	require.Equal(t, "application/pdf", ContentTypeFor("uploads/a@example.com_resume.pdf"))
	require.Equal(t, "application/octet-stream", ContentTypeFor("uploads/resume"))
	require.Equal(t, "application/octet-stream", ContentTypeFor("uploads/resume.unknownext"))
}
