package mergedb

import (
	"fmt"
	"os"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/backup"
)

// WriteDocument replaces the document at path with content, taking a
// timestamped backup of any existing file first. Overwriting the target is
// irreversible otherwise; the backup is mandatory, not best-effort. Returns
// the backup path ("" on a first write).
func WriteDocument(path, content string) (string, error) {
	backupPath, err := backup.Create(path)
	if err != nil {
		return "", fmt.Errorf("backup %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return backupPath, err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(content); err != nil {
		return backupPath, err
	}
	if err := f.Sync(); err != nil {
		return backupPath, err
	}
	return backupPath, f.Close()
}
