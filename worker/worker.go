// Package worker implements the transaction state machine of spec.md
// §4.5: given a package, a requested action, and borrowed Catalog/
// InstalledDb handles, it normalizes the action, recursively resolves
// dependencies, executes the effective action bracketed by scripts, and
// preserves reverse-dependency safety. Grounded on
// original_source/src/worker.c.
package worker

import (
	"github.com/sirupsen/logrus"

	"github.com/mpkgtools/mpkg/catalog"
	"github.com/mpkgtools/mpkg/config"
	"github.com/mpkgtools/mpkg/db"
)

// Action is a requested or effective transaction action.
type Action int

const (
	ActionInstall Action = iota
	ActionUpdate
	ActionUninstall
	ActionNone
)

func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionUpdate:
		return "update"
	case ActionUninstall:
		return "uninstall"
	default:
		return "none"
	}
}

// Worker is a transaction state machine bound to a Catalog and
// InstalledDb for the duration of one top-level Run call. It is not
// safe for concurrent use, matching spec.md §5.
type Worker struct {
	catalog *catalog.Catalog
	db      *db.Db
	cfg     config.Config
	log     *logrus.Logger

	// resolving is the cycle-detection set threaded through recursive
	// sub-worker calls (spec.md §9 open question: cycles must abort,
	// not recurse indefinitely).
	resolving map[string]bool
}

// New binds a Worker to a Catalog and InstalledDb for one root.
func New(cat *catalog.Catalog, database *db.Db, cfg config.Config, log *logrus.Logger) *Worker {
	return &Worker{catalog: cat, db: database, cfg: cfg, log: log, resolving: make(map[string]bool)}
}

// Run is the top-level entry point: it acquires the per-root transaction
// lock (spec.md §9 "No per-root transaction lock") and executes the
// requested (package, action). automatic marks whether this install was
// requested explicitly (false) or pulled in as a dependency (true); it is
// ignored for uninstall.
func (w *Worker) Run(name string, action Action, automatic bool) error {
	unlock, err := acquireLock(w.cfg.Root)
	if err != nil {
		return err
	}
	defer unlock()
	return w.exec(name, action, automatic)
}

// exec normalizes action into an effective action and executes it,
// bracketed by the relevant script phases.
func (w *Worker) exec(name string, action Action, automatic bool) error {
	if w.resolving[name] {
		return cycleError(name)
	}
	w.resolving[name] = true
	defer delete(w.resolving, name)

	effective, err := w.normalize(name, action)
	if err != nil {
		return err
	}
	w.log.Debugf("%s: %s -> %s", name, action, effective)

	switch effective {
	case ActionInstall:
		return w.bracket(name, "preinstall", "postinstall", func() error {
			return w.install(name, automatic)
		})
	case ActionUpdate:
		return w.bracket(name, "preupdate", "postupdate", func() error {
			if err := w.uninstall(name); err != nil {
				return err
			}
			return w.install(name, automatic)
		})
	case ActionUninstall:
		return w.bracket(name, "preuninstall", "postuninstall", func() error {
			return w.uninstall(name)
		})
	default:
		return nil
	}
}

// normalize reinterprets the requested action per spec.md §4.5.
func (w *Worker) normalize(name string, action Action) (Action, error) {
	switch action {
	case ActionInstall, ActionUpdate:
		e, ok := w.catalog.Find(name)
		if !ok {
			return ActionNone, notFoundInCatalog(name)
		}
		if err := w.resolveDepends(action, e); err != nil {
			return ActionNone, err
		}
		rec, ok := w.db.Find(name)
		switch {
		case !ok:
			return ActionInstall, nil
		case rec.Manifest.Release < e.Release:
			return ActionUpdate, nil
		default:
			return ActionNone, nil
		}
	case ActionUninstall:
		if w.hasRdepends(name) {
			return ActionNone, nil
		}
		return ActionUninstall, nil
	default:
		return ActionNone, nil
	}
}

// resolveDepends walks e's dependencies, recursively installing/updating
// any that are missing or stale, then restarts the scan from the top
// after each sub-install so transitively-introduced dependencies are
// picked up — the restart-on-mutation pattern of worker_depends in
// original_source/src/worker.c.
func (w *Worker) resolveDepends(action Action, e catalog.Entry) error {
	for i := 0; i < len(e.Depends); i++ {
		name := e.Depends[i]
		depEntry, ok := w.catalog.Find(name)
		if !ok {
			return notFoundInCatalog(name)
		}
		if rec, ok := w.db.Find(name); ok && rec.Manifest.Release >= depEntry.Release {
			continue
		}
		if err := w.exec(name, action, true); err != nil {
			return err
		}
		if err := w.db.Reload(); err != nil {
			return err
		}
		i = -1
	}
	return nil
}

// hasRdepends reports whether any other installed package depends on name.
func (w *Worker) hasRdepends(name string) bool {
	for _, rec := range w.db.Records() {
		if rec.Manifest.Name == name {
			continue
		}
		for _, dep := range rec.Manifest.Depends {
			if dep.Name == name {
				return true
			}
		}
	}
	return false
}

func (w *Worker) bracket(name, pre, post string, body func() error) error {
	w.runScript(name, pre)
	if err := body(); err != nil {
		return err
	}
	w.runScript(name, post)
	return nil
}
