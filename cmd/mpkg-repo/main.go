// Command mpkg-repo walks a repository tree and (re)generates its
// catalog: `mpkg-repo repodir`, per spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/mpkgtools/mpkg/catalog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: mpkg-repo repodir")
		return 2
	}
	if _, err := catalog.BuildAndEmit(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "mpkg-repo: %s\n", err)
		return 1
	}
	return 0
}
