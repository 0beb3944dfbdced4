package migration

import (
	"regexp"
	"sort"
	"strings"
)

var scriptNamePattern = regexp.MustCompile(`(?i)^V([^_]+)__(.+)\.sql$`)

// ParseName splits a V<version>__<description>.sql filename.
// Filenames that do not follow the convention keep their full name as description
// and get an empty version.
func ParseName(fileName string) (version, description string) {
	m := scriptNamePattern.FindStringSubmatch(fileName)
	if m == nil {
		return "", fileName
	}
	return m[1], strings.ReplaceAll(m[2], "_", " ")
}

// CompareVersions orders dotted numeric versions segment by segment.
// Missing trailing segments count as 0, so "2" and "2.0.0" are equal.
func CompareVersions(a, b string) int {
	pa := versionSegments(a)
	pb := versionSegments(b)

	n := len(pa)
	if len(pb) > n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		var ai, bi int64
		if i < len(pa) {
			ai = pa[i]
		}
		if i < len(pb) {
			bi = pb[i]
		}
		if ai < bi {
			return -1
		}
		if ai > bi {
			return 1
		}
	}
	return 0
}

// SortForBatch orders scripts by version, then by filename.
// The input slice is not modified.
func SortForBatch(scripts []*Script) []*Script {
	sorted := make([]*Script, len(scripts))
	copy(sorted, scripts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := CompareVersions(sorted[i].Version, sorted[j].Version); c != 0 {
			return c < 0
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func versionSegments(v string) []int64 {
	parts := strings.Split(v, ".")
	out := make([]int64, len(parts))
	for i, p := range parts {
		out[i] = leadingInt(p)
	}
	return out
}

// leadingInt reads the leading decimal digits of s, ignoring surrounding
// whitespace. Anything without a leading digit is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int64(r-'0')
		if n > 1<<53 {
			break
		}
	}
	return n
}
