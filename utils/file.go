package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// FileStore reads and writes JSON files with bounded retries. Attempt n
// waits Backoff*n before retrying.
type FileStore struct {
	Retries int
	Backoff time.Duration
}

// NewFileStore uses a 100ms linear backoff.
func NewFileStore(retries int) FileStore {
	return FileStore{Retries: max(1, retries), Backoff: 100 * time.Millisecond}
}

// EnsureDir creates dir and its parents if they don't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, os.ModePerm)
}

func (f FileStore) retry(op, path string, fn func() error) error {
	attempts := max(1, f.Retries)
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < attempts-1 {
			log.Printf("[Storage] %s %s failed (attempt %d/%d): %v", op, path, attempt+1, attempts, err)
			time.Sleep(f.Backoff * time.Duration(attempt+1))
		}
	}
	return fmt.Errorf("%s %s after %d attempts: %w", op, path, attempts, err)
}

// SaveJSON writes v as indented JSON. The file is written next to its
// destination and renamed into place.
func (f FileStore) SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.retry("save", path, func() error {
		if err := EnsureDir(filepath.Dir(path)); err != nil {
			return err
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	})
}

// LoadJSON decodes the file at path into v. A file that is missing, empty
// or not valid JSON is retried.
func (f FileStore) LoadJSON(path string, v any) error {
	return f.retry("load", path, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return errors.New("empty file")
		}
		return json.Unmarshal(data, v)
	})
}

// ListFiles returns the regular files in dir with extension ext, sorted by
// name. A missing directory yields an empty list.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ext {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// CleanupOldFiles keeps the newest keep files with extension ext in dir and
// removes the rest. It returns how many files were removed.
func CleanupOldFiles(dir, ext string, keep int) (int, error) {
	files, err := ListFiles(dir, ext)
	if err != nil || len(files) <= keep {
		return 0, err
	}

	type aged struct {
		path string
		mod  time.Time
	}
	list := make([]aged, 0, len(files))
	for _, p := range files {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		list = append(list, aged{p, info.ModTime()})
	}
	// Newest first; names break ties so equal mtimes still order by timestamped name.
	sort.Slice(list, func(i, j int) bool {
		if !list[i].mod.Equal(list[j].mod) {
			return list[i].mod.After(list[j].mod)
		}
		return list[i].path > list[j].path
	})

	removed := 0
	for _, a := range list[min(keep, len(list)):] {
		if err := os.Remove(a.path); err != nil {
			log.Printf("[Storage] Failed to remove %s: %v", a.path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// DirWritable checks that dir exists (creating it) and accepts a new file.
func DirWritable(dir string) error {
	if err := EnsureDir(dir); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// ReportFilename is YYYYMMDD_HHMMSS_<seed>.json.
func ReportFilename(at time.Time, seed uint64) string {
	return at.Format("20060102_150405") + "_" + strconv.FormatUint(seed, 10) + ".json"
}

// TeamIDFromPath is the file name without directory and extension.
func TeamIDFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
