package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importRule struct {
	deny  []string
	allow []string
}

type violation struct {
	file string
	imp  string
	rule string
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	violations := walkImports(t, root, func(rel, imp string) string {
		rule, ok := ruleFor(modulePath, rel)
		if !ok {
			return ""
		}
		for _, ok := range rule.allow {
			if strings.HasPrefix(imp, ok) {
				return ""
			}
		}
		for _, bad := range rule.deny {
			if strings.HasPrefix(imp, bad) {
				return bad
			}
		}
		return ""
	})
	report(t, "import boundary violations", violations)
}

func TestNoStorageDriversInContentTypes(t *testing.T) {
	root, _ := moduleRoot(t)
	drivers := []string{
		"gorm.io/gorm",
		"gorm.io/driver/",
		"github.com/jackc/pgx/",
		"github.com/neo4j/neo4j-go-driver/",
		"github.com/redis/go-redis/",
	}
	violations := walkImports(t, root, func(rel, imp string) string {
		if !strings.HasPrefix(rel, "internal/contenttypes/") && !strings.HasPrefix(rel, "internal/domain/") {
			return ""
		}
		for _, d := range drivers {
			if strings.HasPrefix(imp, d) {
				return d
			}
		}
		return ""
	})
	report(t, "storage drivers imported by content types (go through ports.Repositories instead)", violations)
}

// ruleFor applies to production files only; tests may wire in-memory stores.
func ruleFor(modulePath, rel string) (importRule, bool) {
	if strings.HasSuffix(rel, "_test.go") {
		return importRule{}, false
	}
	in := func(p string) string { return modulePath + "/internal/" + p }
	switch {
	case strings.HasPrefix(rel, "internal/domain/"):
		return importRule{deny: []string{in("contenttypes"), in("data/"), in("services"), in("app"), in("platform/"), in("observability")}}, true
	case strings.HasPrefix(rel, "internal/contenttypes/"):
		return importRule{deny: []string{in("data/"), in("services"), in("app"), in("observability"), in("platform/neo4jdb"), in("platform/redisdb")}}, true
	case strings.HasPrefix(rel, "internal/data/"):
		return importRule{
			deny:  []string{in("contenttypes"), in("services"), in("app")},
			allow: []string{in("contenttypes/ports")},
		}, true
	case strings.HasPrefix(rel, "internal/platform/"):
		return importRule{deny: []string{in("contenttypes"), in("data/"), in("services"), in("app"), in("domain/")}}, true
	case strings.HasPrefix(rel, "internal/services/"):
		return importRule{deny: []string{in("app")}}, true
	default:
		return importRule{}, false
	}
}

func walkImports(t *testing.T, root string, check func(rel, imp string) string) []violation {
	t.Helper()
	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()
	var violations []violation

	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "vendor", "node_modules", ".gocache":
				return filepath.SkipDir
			default:
				return nil
			}
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, spec := range f.Imports {
			if spec == nil || spec.Path == nil {
				continue
			}
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			if rule := check(rel, imp); rule != "" {
				violations = append(violations, violation{file: rel, imp: imp, rule: rule})
			}
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}
	return violations
}

func report(t *testing.T, title string, violations []violation) {
	t.Helper()
	if len(violations) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(title + ":\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", v.file, v.imp, v.rule)
	}
	t.Fatal(b.String())
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if !strings.HasPrefix(line, "module ") {
			continue
		}
		mp := strings.TrimSpace(strings.TrimPrefix(line, "module "))
		if mp == "" {
			return "", fmt.Errorf("empty module path in %s", goModPath)
		}
		return mp, nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
