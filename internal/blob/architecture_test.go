package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyBlobPackageImportsInfra keeps the infra blob drivers behind this
// facade; loaders, exporters and commands must use the Store interface.
func TestOnlyBlobPackageImportsInfra(t *testing.T) {
	const infraPrefix = "airportcore/internal/infra/blob"
	const allowedPrefix = "airportcore/internal/blob"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "airportcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if strings.HasPrefix(pkg.PkgPath, allowedPrefix) || strings.HasPrefix(pkg.PkgPath, infraPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if importPath == infraPrefix || strings.HasPrefix(importPath, infraPrefix+"/") {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of infra blob package: %s", v)
		}
	}
}

// TestDomainHasNoInfraImports checks the domain package stays a leaf.
func TestDomainHasNoInfraImports(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "airportcore/pkg/domain")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, "airportcore/") {
				t.Errorf("%s imports %s", pkg.PkgPath, importPath)
			}
		}
	}
}
