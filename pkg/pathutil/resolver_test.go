package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	p := New(Config{DataDir: "data"})

	assert.Equal(t, "data", p.GetDataDir())
	assert.Equal(t, filepath.Join("data", "pocketr.db"), p.GetDatabasePath())
	assert.Equal(t, filepath.Join("data", "beancount"), p.GetExportDir())
}

func TestNewOverrides(t *testing.T) {
	p := New(Config{DataDir: "data", DatabasePath: "/tmp/ledger.db", ExportDir: "/srv/books"})

	assert.Equal(t, "/tmp/ledger.db", p.GetDatabasePath())
	assert.Equal(t, "/srv/books", p.GetExportDir())
}

func TestGetMonthFilePath(t *testing.T) {
	p := New(Config{ExportDir: "books"})

	tests := []struct {
		yearMonth string
		want      string
		wantErr   bool
	}{
		{"2026-01", filepath.Join("books", "2026", "2026-01.beancount"), false},
		{"2026-12", filepath.Join("books", "2026", "2026-12.beancount"), false},
		{"2026-1", "", true},
		{"26-01", "", true},
		{"2026-01-05", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.yearMonth, func(t *testing.T) {
			got, err := p.GetMonthFilePath(tt.yearMonth)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()
	p := New(Config{ExportDir: root})

	file := filepath.Join(root, "2026", "2026-02.beancount")
	assert.False(t, p.FileExists(filepath.Dir(file)))

	require.NoError(t, p.EnsureParentDir(file))
	assert.True(t, p.FileExists(filepath.Dir(file)))
	assert.False(t, p.FileExists(file))
}
