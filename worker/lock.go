package worker

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/mpkgtools/mpkg/fsutil"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// acquireLock takes the advisory per-root transaction lock spec.md §9
// calls for (<root>/var/db/mpkg/.lock, flock(2)). The returned function
// releases it; callers must defer it.
func acquireLock(root string) (func(), error) {
	dir := filepath.Join(root, "var", "db", "mpkg")
	if err := fsutil.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, ".lock")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, mpkgerr.IO("open", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, mpkgerr.IO("flock", path, err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}
