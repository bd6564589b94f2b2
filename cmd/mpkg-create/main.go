// Command mpkg-create builds package archives from manifests and a
// staging (proto) directory: `mpkg-create -p protodir -r repodir manifest...`,
// per spec.md §6.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mpkgtools/mpkg/build"
	"github.com/mpkgtools/mpkg/manifest"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mpkg-create", flag.ContinueOnError)
	protoDir := fs.String("p", "", "staging (proto) directory")
	repoDir := fs.String("r", "", "repository directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	manifests := fs.Args()
	if *protoDir == "" || *repoDir == "" || len(manifests) == 0 {
		fmt.Fprintln(os.Stderr, "usage: mpkg-create -p protodir -r repodir manifest ...")
		return 2
	}

	for _, path := range manifests {
		mf, err := manifest.Parse(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mpkg-create: %s\n", err)
			return 1
		}
		if err := build.Package(mf, *protoDir, *repoDir); err != nil {
			fmt.Fprintf(os.Stderr, "mpkg-create: %s\n", err)
			return 1
		}
	}
	return 0
}
