package build

import (
	"bytes"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/mpkgtools/mpkg/catalog"
	"github.com/mpkgtools/mpkg/manifest"
	"github.com/mpkgtools/mpkg/mpkgerr"
)

// PlanPackage is one package a Plan builds: a manifest file and the
// staging directory its nodes are read from.
type PlanPackage struct {
	ManifestPath string `yaml:"manifest"`
	ProtoDir     string `yaml:"protoDir"`
}

// Plan is a declarative, multi-package repository build, the supplemental
// feature SPEC_FULL.md §4.8 adds over a one-shot mpkg-create +
// mpkg-repo invocation pair: one YAML file builds an entire repository
// and regenerates its catalog. Grounded on the teacher's
// manifest.Repository/manifest.Package.Apply pair, which plays the same
// "declarative multi-artifact build" role for a Debian repository.
type Plan struct {
	RepoDir  string        `yaml:"repoDir"`
	Packages []PlanPackage `yaml:"packages"`
}

// LoadPlan reads and parses a Plan from a YAML file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mpkgerr.IO("open", path, err)
	}
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, mpkgerr.Format(path, 0, "invalid build plan: %s", err)
	}
	if p.RepoDir == "" {
		return nil, mpkgerr.Format(path, 0, "build plan missing repoDir")
	}
	return &p, nil
}

// Result is one package's build outcome within a Plan.Compile run.
type Result struct {
	Name    string
	Release int
	Err     error
}

// Compile builds every package in the plan and regenerates the
// repository's catalog, returning one Result per package so a caller can
// log or report failures without aborting the whole batch.
func (p *Plan) Compile() ([]Result, error) {
	results := make([]Result, 0, len(p.Packages))
	for _, pkg := range p.Packages {
		mf, err := manifest.Parse(pkg.ManifestPath)
		if err != nil {
			results = append(results, Result{Name: pkg.ManifestPath, Err: err})
			continue
		}
		err = Package(mf, pkg.ProtoDir, p.RepoDir)
		results = append(results, Result{Name: mf.Name, Release: mf.Release, Err: err})
	}

	if _, err := catalog.BuildAndEmit(p.RepoDir); err != nil {
		return results, err
	}
	return results, nil
}
