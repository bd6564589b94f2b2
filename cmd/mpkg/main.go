// Command mpkg is the end-user CLI: `mpkg [-R root] [-r repo] [-nvy] <cmd>
// ...` with subcommands info, install, list, remove, update, per
// spec.md §6. It does argument parsing and dispatch only; every decision
// is made by the library packages (catalog, db, worker).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mpkgtools/mpkg/catalog"
	"github.com/mpkgtools/mpkg/config"
	"github.com/mpkgtools/mpkg/db"
	"github.com/mpkgtools/mpkg/mpkgerr"
	"github.com/mpkgtools/mpkg/worker"
)

// exitCode maps an mpkgerr.Kind to the exit-code contract of spec.md §7:
// 0 success, 1 runtime error, 2 usage error.
func exitCode(err error) int {
	if mpkgerr.Is(err, mpkgerr.KindUsage) {
		return 2
	}
	return 1
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mpkg", flag.ContinueOnError)
	root := fs.String("R", "/", "target root")
	repo := fs.String("r", "", "repository directory")
	dryRun := fs.Bool("n", false, "dry run: skip package scripts (files are still installed and removed)")
	verbose := fs.Bool("v", false, "verbose")
	assumeYes := fs.Bool("y", false, "assume yes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mpkg [-R root] [-r repo] [-nvy] <cmd> ...")
		return 2
	}

	cfg := config.Config{Root: *root, Repo: *repo, DryRun: *dryRun, Verbose: *verbose, AssumeYes: *assumeYes}
	log := config.NewLogger(cfg.Verbose)

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "info":
		return infoCmd(cfg, cmdArgs)
	case "install":
		return transactCmd(cfg, log, cmdArgs, worker.ActionInstall)
	case "update":
		if len(cmdArgs) == 0 {
			return updateAllCmd(cfg, log)
		}
		return transactCmd(cfg, log, cmdArgs, worker.ActionUpdate)
	case "remove":
		return transactCmd(cfg, log, cmdArgs, worker.ActionUninstall)
	case "list":
		return listCmd(cfg, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "mpkg: %s: unknown command\n", cmd)
		return 2
	}
}

func transactCmd(cfg config.Config, log *logrus.Logger, args []string, action worker.Action) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mpkg install|update|remove <package> ...")
		return 2
	}
	if cfg.Repo == "" {
		fmt.Fprintln(os.Stderr, "mpkg: -r repo is required")
		return 2
	}

	cat, err := catalog.Parse(filepath.Join(cfg.Repo, "catalog"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
		return exitCode(err)
	}
	database, err := db.Init(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
		return exitCode(err)
	}
	w := worker.New(cat, database, cfg, log)

	for _, name := range args {
		if err := w.Run(name, action, false); err != nil {
			fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
			return exitCode(err)
		}
	}
	return 0
}

// updateAllCmd attempts an update for every currently-installed package,
// matching original_source/src/update.c's update_func (which iterates the
// whole db rather than taking package names as arguments).
func updateAllCmd(cfg config.Config, log *logrus.Logger) int {
	if cfg.Repo == "" {
		fmt.Fprintln(os.Stderr, "mpkg: -r repo is required")
		return 2
	}
	cat, err := catalog.Parse(filepath.Join(cfg.Repo, "catalog"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
		return exitCode(err)
	}
	database, err := db.Init(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
		return exitCode(err)
	}

	names := make([]string, 0, len(database.Records()))
	for _, rec := range database.Records() {
		names = append(names, rec.Manifest.Name)
	}

	w := worker.New(cat, database, cfg, log)
	for _, name := range names {
		if err := w.Run(name, worker.ActionUpdate, false); err != nil {
			fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
			return exitCode(err)
		}
	}
	return 0
}
