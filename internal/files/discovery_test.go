package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bedep/internal/errors"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(p, mod, mod))
	return p
}

func TestIsWorkbook(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AI_Rapor.xlsx", true},
		{"REPORT.XLSX", true},
		{"macro.xlsm", true},
		{"legacy.xls", false},
		{"~$AI_Rapor.xlsx", false},
		{"data.csv", false},
		{"xlsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWorkbook(tt.name))
		})
	}
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	touch(t, dir, "b.xlsx", base.Add(time.Hour))
	touch(t, dir, "a.xlsx", base)
	touch(t, dir, "~$b.xlsx", base.Add(2*time.Hour))
	touch(t, dir, "notes.txt", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.xlsx"), 0o755))

	found, err := NewDiscovery("").FindWorkbooks(dir)
	require.NoError(t, err)

	require.Len(t, found, 2)
	assert.Equal(t, "a.xlsx", found[0].Name)
	assert.Equal(t, "b.xlsx", found[1].Name)
	assert.Equal(t, filepath.Join(dir, "b.xlsx"), found[1].Path)
}

func TestFindWorkbooks_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0o755))
	touch(t, filepath.Join(base, "data"), "r.xlsx", time.Now())

	found, err := NewDiscovery(base).FindWorkbooks("data")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "data", "r.xlsx"), found[0].Path)
}

func TestFindWorkbooks_MissingDir(t *testing.T) {
	_, err := NewDiscovery("").FindWorkbooks(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestResolveWorkbook(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := touch(t, dir, "2025.xlsx", base)
	newer := touch(t, dir, "2026.xlsx", base.Add(24*time.Hour))
	d := NewDiscovery("")

	t.Run("file path is returned as is", func(t *testing.T) {
		got, err := d.ResolveWorkbook(older)
		require.NoError(t, err)
		assert.Equal(t, older, got)
	})

	t.Run("directory resolves to newest workbook", func(t *testing.T) {
		got, err := d.ResolveWorkbook(dir)
		require.NoError(t, err)
		assert.Equal(t, newer, got)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := d.ResolveWorkbook(t.TempDir())
		var appErr *apierrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := d.ResolveWorkbook(filepath.Join(dir, "missing.xlsx"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}
