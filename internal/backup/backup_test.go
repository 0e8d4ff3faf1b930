package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talhabaigg/tsd3pl/internal/config"
)

type fakeStore struct {
	uploads []string
	err     error
}

func (f *fakeStore) Upload(_ context.Context, objectName, filePath string) error {
	if f.err != nil {
		return f.err
	}
	if _, err := os.Stat(filePath); err != nil {
		return err
	}
	f.uploads = append(f.uploads, objectName)
	return nil
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newRunner(t *testing.T, store ObjectStore, dump DumpFunc) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.BackupConfig{Dir: dir}
	r := NewRunner(config.DatabaseConfig{}, cfg, store,
		WithClock(fixedClock()), WithDump(dump))
	return r, dir
}

func TestRunUploadsAndRemovesLocalCopy(t *testing.T) {
	store := &fakeStore{}
	writeDump := func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte("-- dump"), 0o644)
	}
	r, dir := newRunner(t, store, writeDump)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, store.uploads, 1)
	assert.Equal(t, "backups/db_backup_2024-05-10_02-00-00.sql", store.uploads[0])

	// Local copy is removed after a successful upload.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunDumpFailureAborts(t *testing.T) {
	store := &fakeStore{}
	failingDump := func(_ context.Context, path string) error {
		// Simulate mysqldump dying midway with a partial file on disk.
		_ = os.WriteFile(path, []byte("-- partial"), 0o644)
		return errors.New("exit status 2")
	}
	r, dir := newRunner(t, store, failingDump)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database backup failed")
	assert.Empty(t, store.uploads)

	// The partial artifact is left in place for inspection.
	_, statErr := os.Stat(filepath.Join(dir, "db_backup_2024-05-10_02-00-00.sql"))
	assert.NoError(t, statErr)
}

func TestRunUploadFailureKeepsLocalCopy(t *testing.T) {
	store := &fakeStore{err: errors.New("bucket unavailable")}
	writeDump := func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte("-- dump"), 0o644)
	}
	r, dir := newRunner(t, store, writeDump)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload backup")

	_, statErr := os.Stat(filepath.Join(dir, "db_backup_2024-05-10_02-00-00.sql"))
	assert.NoError(t, statErr)
}
