package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveAndIndex(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save("p1", "US", "https://example.com/pricing", "<html>us</html>"))
	require.NoError(t, s.Save("p1", "", "https://example.com/pricing", "<html>default</html>"))

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "p1", records[0].ProductID)
	assert.Equal(t, "US", records[0].RegionCode)
	assert.Contains(t, records[1].File, "default")

	content, err := os.ReadFile(filepath.Join(dir, records[0].File))
	require.NoError(t, err)
	assert.Equal(t, "<html>us</html>", string(content))
}

func TestStoreReloadsIndex(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("p1", "DE", "u", "c"))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	require.Len(t, reopened.Records(), 1)
	assert.Equal(t, "DE", reopened.Records()[0].RegionCode)
}

func TestStoreSanitizesFilenames(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save("p/../1", "u s", "u", "c"))

	rec := s.Records()[0]
	assert.NotContains(t, rec.File, "/")
	assert.NotContains(t, rec.File, " ")
}
