package worker

import "github.com/mpkgtools/mpkg/mpkgerr"

func notFoundInCatalog(name string) error {
	return mpkgerr.Missing("catalog", name)
}

// cycleError reports a dependency cycle discovered during resolution
// (spec.md §9 open question: cycles must abort with a clear error rather
// than recurse indefinitely).
func cycleError(name string) error {
	return mpkgerr.Format(name, 0, "dependency cycle detected while resolving %s", name)
}
