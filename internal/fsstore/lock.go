package fsstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const lockFilename = ".lock"

// DirLock marks a state directory as owned by this process for the lifetime of
// the daemon. Two daemons sharing a state dir would corrupt each other's
// write-through caches, so acquisition is non-blocking and fails fast.
type DirLock struct {
	path string
	file *os.File
}

// AcquireDirLock takes an exclusive advisory lock on dir, creating it if
// needed. Returns ErrLockHeld when another live process owns the dir.
func AcquireDirLock(dir string) (*DirLock, error) {
	normalized, err := normalizePath(dir)
	if err != nil {
		return nil, err
	}
	if err := EnsureDir(normalized); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(normalized, lockFilename)
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerm)
	if err != nil {
		return nil, fmt.Errorf("open lock %s: %w", lockPath, err)
	}
	if err := flockExclusive(file); err != nil {
		_ = file.Close()
		return nil, err
	}

	writeLockMetadata(file, lockPath)
	return &DirLock{path: lockPath, file: file}, nil
}

func (l *DirLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := flockRelease(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return closeErr
}

func writeLockMetadata(file *os.File, lockPath string) {
	if file == nil {
		return
	}
	host, _ := os.Hostname()
	payload := map[string]any{
		"lock_path":   lockPath,
		"pid":         os.Getpid(),
		"hostname":    host,
		"acquired_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_ = file.Truncate(0)
	_, _ = file.Seek(0, 0)
	_, _ = file.Write(data)
	_ = file.Sync()
}
