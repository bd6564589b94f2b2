package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mpkgtools/mpkg/config"
	"github.com/mpkgtools/mpkg/db"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// infoCmd implements `mpkg info [-a] [-d] [-l] [package ...]`, grounded on
// original_source/src/info.c.
func infoCmd(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	all := fs.Bool("a", false, "show all installed packages")
	showDeps := fs.Bool("d", false, "show dependencies")
	showFiles := fs.Bool("l", false, "show file list")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	names := fs.Args()

	if *all && len(names) > 0 {
		fmt.Fprintln(os.Stderr, "mpkg: info: -a and explicit package names are mutually exclusive")
		return 2
	}
	if !*all && len(names) == 0 {
		fmt.Fprintln(os.Stderr, "mpkg: info: specify -a or at least one package")
		return 2
	}

	database, err := db.Load(cfg.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mpkg: %s\n", err)
		return exitCode(err)
	}

	var records []db.Record
	if *all {
		records = database.Records()
	} else {
		for _, name := range names {
			rec, ok := database.Find(name)
			if !ok {
				fmt.Fprintf(os.Stderr, "mpkg: info: %s: not installed\n", name)
				return exitCode(mpkgerr.Missing("installed db", name))
			}
			records = append(records, rec)
		}
	}

	for _, rec := range records {
		showInfo(rec, *showDeps, *showFiles)
	}
	return 0
}

func showInfo(rec db.Record, showDeps, showFiles bool) {
	fmt.Printf("%s-%d\n", rec.Manifest.Name, rec.Manifest.Release)
	if showDeps && len(rec.Manifest.Depends) > 0 {
		fmt.Println("depends:")
		for _, d := range rec.Manifest.Depends {
			fmt.Printf("\t%s\n", d.Name)
		}
	}
	if showFiles && len(rec.Manifest.Nodes) > 0 {
		fmt.Println("content:")
		for _, n := range rec.Manifest.Nodes {
			fmt.Printf("\t%s\n", n.Path)
		}
	}
}
