// Package backup takes timestamped copies of files about to be overwritten
// and prunes old copies per target.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Create copies path to `<path>.backup_<YYYYMMDD_HHMMSS>` and returns the
// backup path. A missing source is not an error; it returns "" (nothing to
// protect on a first write).
func Create(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	dst := fmt.Sprintf("%s.backup_%s", path, time.Now().Format("20060102_150405"))
	if err := copyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Prune keeps the newest keep backups of target and deletes the rest,
// returning the deleted paths. keep < 0 disables pruning. The timestamp
// suffix sorts lexically, so name order is age order.
func Prune(target string, keep int) ([]string, error) {
	if keep < 0 {
		return nil, nil
	}
	matches, err := filepath.Glob(target + ".backup_*")
	if err != nil {
		return nil, err
	}
	if len(matches) <= keep {
		return nil, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))

	var removed []string
	for _, p := range matches[keep:] {
		if err := os.Remove(p); err != nil {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
