package worker

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mpkgtools/mpkg/ar"
	"github.com/mpkgtools/mpkg/catalog"
	"github.com/mpkgtools/mpkg/config"
	"github.com/mpkgtools/mpkg/db"
	"github.com/mpkgtools/mpkg/manifest"
)

// writeRepoPackage stages a minimal package directory (<repo>/<name>/
// {data.a,manifest}) containing a single regular file, for exec tests
// that don't care about archive content beyond "install must succeed".
// The archive has no entry for the "etc" directory itself, so the target
// root must already contain it (buildCatalogAndRoot creates it).
func writeRepoPackage(t *testing.T, repo, name string, release int, depends []string) {
	t.Helper()
	pkgDir := filepath.Join(repo, name)
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatal(err)
	}

	w, err := ar.Create(filepath.Join(pkgDir, "data.a"))
	if err != nil {
		t.Fatal(err)
	}
	entry := ar.Entry{
		Name:    "etc/" + name + ".conf",
		ModTime: time.Unix(1000, 0),
		Mode:    unix.S_IFREG | 0644,
		Size:    int64(len(name)),
	}
	if err := w.Append(entry, stringsReader(name)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	mf := &manifest.Manifest{Name: name, Release: release, Nodes: []manifest.Node{
		{Path: "etc/" + name + ".conf", Kind: manifest.NodeFile},
	}}
	for _, d := range depends {
		mf.Depends = append(mf.Depends, manifest.Dependency{Name: d})
	}
	if err := mf.Emit(filepath.Join(pkgDir, "manifest")); err != nil {
		t.Fatal(err)
	}
}

func stringsReader(s string) *stringReader { return &stringReader{s: s} }

type stringReader struct {
	s   string
	pos int
}

func (r *stringReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.pos:])
	r.pos += n
	return n, nil
}

func buildCatalogAndRoot(t *testing.T) (repo, root string) {
	t.Helper()
	repo = t.TempDir()
	root = t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "etc"), 0755); err != nil {
		t.Fatal(err)
	}
	return
}

func newWorker(t *testing.T, repo, root string) (*Worker, *catalog.Catalog, *db.Db) {
	t.Helper()
	cat, err := catalog.Build(repo)
	if err != nil {
		t.Fatal(err)
	}
	database, err := db.Init(root)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Config{Root: root, Repo: repo}
	w := New(cat, database, cfg, config.NewLogger(false))
	return w, cat, database
}

func TestDependencyResolution(t *testing.T) {
	repo, root := buildCatalogAndRoot(t)
	writeRepoPackage(t, repo, "B", 1, nil)
	writeRepoPackage(t, repo, "A", 1, []string{"B"})

	w, _, database := newWorker(t, repo, root)
	if err := w.Run("A", ActionInstall, false); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if err := database.Reload(); err != nil {
		t.Fatal(err)
	}
	a, ok := database.Find("A")
	if !ok || a.Automatic {
		t.Fatalf("A = %+v, %v", a, ok)
	}
	b, ok := database.Find("B")
	if !ok || !b.Automatic {
		t.Fatalf("B = %+v, %v", b, ok)
	}
}

func TestUninstallBlockedByReverseDependency(t *testing.T) {
	repo, root := buildCatalogAndRoot(t)
	writeRepoPackage(t, repo, "B", 1, nil)
	writeRepoPackage(t, repo, "A", 1, []string{"B"})

	w, _, database := newWorker(t, repo, root)
	if err := w.Run("A", ActionInstall, false); err != nil {
		t.Fatal(err)
	}
	if err := database.Reload(); err != nil {
		t.Fatal(err)
	}

	if err := w.Run("B", ActionUninstall, false); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := database.Reload(); err != nil {
		t.Fatal(err)
	}
	if _, ok := database.Find("B"); !ok {
		t.Fatal("B should remain installed: A still depends on it")
	}
}

func TestUninstallRemovesConfigNodes(t *testing.T) {
	repo, root := buildCatalogAndRoot(t)

	pkgDir := filepath.Join(repo, "P")
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatal(err)
	}
	w, err := ar.Create(filepath.Join(pkgDir, "data.a"))
	if err != nil {
		t.Fatal(err)
	}
	entry := ar.Entry{Name: "etc/p.conf", ModTime: time.Unix(1, 0), Mode: unix.S_IFREG | 0644, Size: 1}
	if err := w.Append(entry, stringsReader("x")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	mf := &manifest.Manifest{Name: "P", Release: 1, Nodes: []manifest.Node{
		{Path: "etc/p.conf", Kind: manifest.NodeConfig},
	}}
	if err := mf.Emit(filepath.Join(pkgDir, "manifest")); err != nil {
		t.Fatal(err)
	}

	wk, _, database := newWorker(t, repo, root)
	if err := wk.Run("P", ActionInstall, false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "etc/p.conf")); err != nil {
		t.Fatalf("config file should exist after install: %v", err)
	}

	if err := database.Reload(); err != nil {
		t.Fatal(err)
	}
	if err := wk.Run("P", ActionUninstall, false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "etc/p.conf")); !os.IsNotExist(err) {
		t.Fatalf("config file should be removed on uninstall, stat err = %v", err)
	}
}

func TestDependencyCycleAborts(t *testing.T) {
	repo, root := buildCatalogAndRoot(t)
	writeRepoPackage(t, repo, "A", 1, []string{"B"})
	writeRepoPackage(t, repo, "B", 1, []string{"A"})

	w, _, _ := newWorker(t, repo, root)
	if err := w.Run("A", ActionInstall, false); err == nil {
		t.Fatal("expected cycle error")
	}
}
