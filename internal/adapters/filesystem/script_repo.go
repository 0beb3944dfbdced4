// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// ScriptRepository implements secondary.ScriptRepository over a directory tree.
type ScriptRepository struct{}

// NewScriptRepository creates a new filesystem script repository.
func NewScriptRepository() *ScriptRepository {
	return &ScriptRepository{}
}

// Scan walks root recursively and returns every .sql file, ordered by
// relative path. Any walk or read error fails the whole scan.
func (r *ScriptRepository) Scan(ctx context.Context, root string) ([]*secondary.ScriptFileRecord, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scripts path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scripts path %s is not a directory", absRoot)
	}

	var records []*secondary.ScriptFileRecord
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isSQLFile(d.Name()) {
			return nil
		}

		record, err := readRecord(absRoot, p)
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan scripts: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return path.Join(records[i].RelativeDir, records[i].Name) < path.Join(records[j].RelativeDir, records[j].Name)
	})
	return records, nil
}

// Write creates or overwrites root/relDir/name.
func (r *ScriptRepository) Write(ctx context.Context, root, relDir, name, content string) (*secondary.ScriptFileRecord, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scripts path: %w", err)
	}
	dir, err := resolveDir(absRoot, relDir)
	if err != nil {
		return nil, err
	}
	if err := checkBaseName(name); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create script directory: %w", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write script: %w", err)
	}
	return readRecord(absRoot, target)
}

// Rename renames a script within its directory. The target must not exist.
func (r *ScriptRepository) Rename(ctx context.Context, root, relDir, oldName, newName string) error {
	dir, err := resolveDir(root, relDir)
	if err != nil {
		return err
	}
	if err := checkBaseName(oldName); err != nil {
		return err
	}
	if err := checkBaseName(newName); err != nil {
		return err
	}

	from := filepath.Join(dir, oldName)
	to := filepath.Join(dir, newName)

	if _, err := os.Stat(from); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("script %s not found", oldName)
	}
	if oldName != newName {
		if _, err := os.Stat(to); err == nil {
			return fmt.Errorf("script %s already exists", newName)
		}
	}

	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename script: %w", err)
	}
	return nil
}

// Delete removes a script file.
func (r *ScriptRepository) Delete(ctx context.Context, root, relDir, name string) error {
	dir, err := resolveDir(root, relDir)
	if err != nil {
		return err
	}
	if err := checkBaseName(name); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("script %s not found", name)
		}
		return fmt.Errorf("failed to delete script: %w", err)
	}
	return nil
}

// ScriptID derives a stable identifier from an absolute path.
func ScriptID(absPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(absPath))).String()
}

func readRecord(absRoot, p string) (*secondary.ScriptFileRecord, error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	relDir, err := filepath.Rel(absRoot, filepath.Dir(p))
	if err != nil {
		return nil, fmt.Errorf("failed to relativise %s: %w", p, err)
	}
	relDir = filepath.ToSlash(relDir)
	if relDir == "." {
		relDir = ""
	}

	name := filepath.Base(p)
	version, description := migration.ParseName(name)
	return &secondary.ScriptFileRecord{
		ID:          ScriptID(p),
		Path:        p,
		RelativeDir: relDir,
		Name:        name,
		Version:     version,
		Description: description,
		Content:     string(content),
	}, nil
}

func isSQLFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".sql")
}

// resolveDir joins relDir onto root and refuses paths that leave root.
func resolveDir(root, relDir string) (string, error) {
	slashed := filepath.ToSlash(relDir)
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("invalid script directory %q", relDir)
		}
	}
	return filepath.Join(root, filepath.FromSlash(strings.Trim(slashed, "/"))), nil
}

func checkBaseName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid script name %q", name)
	}
	return nil
}

// Ensure ScriptRepository implements the interface
var _ secondary.ScriptRepository = (*ScriptRepository)(nil)
