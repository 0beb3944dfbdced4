package app

import (
	"fmt"
	"path"
	"strings"

	"github.com/example/schemapilot/internal/core/migration"
)

// findScript resolves a reference by ID, relative path or bare filename.
// A bare filename that exists in several directories is ambiguous.
func findScript(scripts []*migration.Script, ref string) (*migration.Script, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrScriptNotFound)
	}

	for _, s := range scripts {
		if s.ID == ref {
			return s, nil
		}
	}

	slashed := strings.TrimPrefix(strings.ReplaceAll(ref, `\`, "/"), "./")
	for _, s := range scripts {
		if path.Join(s.RelativeDir, s.Name) == slashed {
			return s, nil
		}
	}

	var matches []*migration.Script
	for _, s := range scripts {
		if s.Name == ref {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, ref)
	case 1:
		return matches[0], nil
	}
	return nil, fmt.Errorf("script name %s is ambiguous (%d matches); use the relative path", ref, len(matches))
}
