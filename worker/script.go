package worker

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mpkgtools/mpkg/fsutil"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// runScript invokes <repo>/<name>/script with phase as its sole argument,
// if that file exists (scripts are optional per spec.md §4.2). When the
// root is "/" the script is spawned directly via its own argv, with no
// shell in between; otherwise it is copied into <root>/tmp and executed
// under chroot via /bin/sh, since a script written against a repository
// path has no meaning once chrooted and the shell is needed to run it from
// inside the new root. This replaces the original's uniform
// system("/bin/sh %s/script %s") with an explicit process-spawn
// abstraction (spec.md §9). Any failure — spawn error or nonzero exit,
// including the original's documented -1/127 cases — is logged and
// otherwise ignored: scripts are advisory, never fatal (spec.md §4.5, §7
// "Partial non-fatal").
func (w *Worker) runScript(name, phase string) {
	script := filepath.Join(w.cfg.Repo, name, "script")
	if _, err := os.Stat(script); err != nil {
		return
	}
	if w.cfg.DryRun {
		w.log.Debugf("dry-run: skip %s %s", script, phase)
		return
	}

	var cmd *exec.Cmd
	var cleanup func()

	if w.cfg.Root == "/" {
		cmd = exec.Command(script, phase)
	} else {
		tmpDir := filepath.Join(w.cfg.Root, "tmp")
		if err := fsutil.MkdirAll(tmpDir, 0755); err != nil {
			w.log.Warn(mpkgerr.Partial("script %s %s: %v", name, phase, err))
			return
		}
		tmp, err := os.CreateTemp(tmpDir, "script.")
		if err != nil {
			w.log.Warn(mpkgerr.Partial("script %s %s: %v", name, phase, err))
			return
		}
		inRootPath := tmp.Name()
		tmp.Close()
		if err := fsutil.CopyFile(inRootPath, script, 0755); err != nil {
			w.log.Warn(mpkgerr.Partial("script %s %s: %v", name, phase, err))
			os.Remove(inRootPath)
			return
		}
		base := filepath.Base(inRootPath)
		cmd = exec.Command("chroot", w.cfg.Root, "/bin/sh", filepath.Join("/tmp", base), phase)
		cleanup = func() { os.Remove(inRootPath) }
	}
	if cleanup != nil {
		defer cleanup()
	}

	if err := cmd.Run(); err != nil {
		w.log.Warn(mpkgerr.Partial("script %s %s: %v", name, phase, err))
	}
}
