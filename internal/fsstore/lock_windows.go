//go:build windows

package fsstore

import "os"

// Windows has no flock; rely on the exclusive-create semantics of the open in
// AcquireDirLock being enough for a single-machine daemon. The lock file is
// left in place and ownership is advisory only.
func flockExclusive(file *os.File) error { return nil }

func flockRelease(file *os.File) error { return nil }
