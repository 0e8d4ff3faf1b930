package backup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/talhabaigg/tsd3pl/internal/config"
)

// ObjectStore uploads local files to object storage.
type ObjectStore interface {
	Upload(ctx context.Context, objectName, filePath string) error
}

// DumpFunc writes a database dump to the given path.
type DumpFunc func(ctx context.Context, path string) error

// Runner produces a timestamped database dump and ships it to object
// storage. A failed dump or upload aborts the run and leaves any local
// artifact in place for inspection; the local copy is removed only after a
// successful upload.
type Runner struct {
	dump   DumpFunc
	store  ObjectStore
	dir    string
	now    func() time.Time
	logger *log.Logger
}

// RunnerOption applies configuration to the backup runner.
type RunnerOption func(*Runner)

// WithClock injects the time source used for backup file names.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithLogger injects a custom logger implementation.
func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithDump replaces the mysqldump invocation, mainly for tests.
func WithDump(dump DumpFunc) RunnerOption {
	return func(r *Runner) { r.dump = dump }
}

// NewRunner creates a backup runner for the configured database.
func NewRunner(db config.DatabaseConfig, cfg config.BackupConfig, store ObjectStore, opts ...RunnerOption) *Runner {
	r := &Runner{
		dump:   MysqldumpFunc(cfg.MysqldumpPath, db),
		store:  store,
		dir:    cfg.Dir,
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one backup cycle.
func (r *Runner) Run(ctx context.Context) error {
	name := fmt.Sprintf("db_backup_%s.sql", r.now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(r.dir, name)

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	r.logger.Printf("backup: dumping database to %s", path)
	if err := r.dump(ctx, path); err != nil {
		return fmt.Errorf("database backup failed: %w", err)
	}

	object := "backups/" + name
	r.logger.Printf("backup: uploading %s", object)
	if err := r.store.Upload(ctx, object, path); err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", object, err)
	}

	if err := os.Remove(path); err != nil {
		r.logger.Printf("backup: could not remove local copy %s: %v", path, err)
	}
	r.logger.Printf("backup: %s uploaded successfully", object)
	return nil
}

// MysqldumpFunc shells out to mysqldump with the configured credentials.
// The dump is written via --result-file so no shell redirection is needed.
func MysqldumpFunc(bin string, db config.DatabaseConfig) DumpFunc {
	if bin == "" {
		bin = "mysqldump"
	}
	return func(ctx context.Context, path string) error {
		cmd := exec.CommandContext(ctx, bin,
			"-h", db.Host,
			"-P", strconv.Itoa(db.Port),
			"-u", db.User,
			"--password="+db.Password,
			"--single-transaction",
			"--result-file="+path,
			db.Name,
		)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("mysqldump exited with error: %w: %s", err, strings.TrimSpace(string(out)))
		}
		return nil
	}
}
