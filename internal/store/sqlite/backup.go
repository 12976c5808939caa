package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bookdex/bookdex-server/internal/errors"
)

// Backup snapshots the database into dir using VACUUM INTO and returns the
// snapshot path. VACUUM INTO produces a consistent copy, but callers should
// quiesce writes first so the snapshot reflects a run boundary.
func (s *Store) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.Wrap(err, errors.CodePersistence, "create backup dir")
	}

	name := fmt.Sprintf("bookdex-%s.db", time.Now().UTC().Format("20060102-150405"))
	target := filepath.Join(dir, name)

	if _, err := os.Stat(target); err == nil {
		// Two backups within one second. Disambiguate rather than fail.
		name = fmt.Sprintf("bookdex-%s.db", time.Now().UTC().Format("20060102-150405.000"))
		target = filepath.Join(dir, name)
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		return "", errors.Wrapf(err, errors.CodePersistence, "vacuum into %s", target)
	}

	s.logger.Info("database backup created", "path", target)
	return target, nil
}
