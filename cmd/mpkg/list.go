package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mpkgtools/mpkg/config"
	"github.com/mpkgtools/mpkg/db"
)

// listCmd implements `mpkg list [-a] [-m]`, grounded on
// original_source/src/list.c.
func listCmd(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	automaticOnly := fs.Bool("a", false, "list only automatically-installed packages")
	manualOnly := fs.Bool("m", false, "list only manually-installed packages")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *automaticOnly && *manualOnly {
		fmt.Fprintln(os.Stderr, "mpkg: list: -a and -m are mutually exclusive")
		return 2
	}

	database, err := db.Load(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
		return exitCode(err)
	}

	for _, rec := range database.Records() {
		if *automaticOnly && !rec.Automatic {
			continue
		}
		if *manualOnly && rec.Automatic {
			continue
		}
		fmt.Printf("%s-%d\n", rec.Manifest.Name, rec.Manifest.Release)
	}
	return 0
}
