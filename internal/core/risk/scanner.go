// Package risk screens migration scripts for destructive SQL.
// It is a heuristic over statement text, not a parser: it flags statements
// that syntactically contain known destructive patterns and performs no I/O.
package risk

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Level is the classification of a whole script.
type Level string

const (
	LevelSafe      Level = "safe"
	LevelDangerous Level = "dangerous"
)

// Pattern identifies one destructive construct.
type Pattern string

const (
	PatternDropObject         Pattern = "drop_object"
	PatternTruncate           Pattern = "truncate"
	PatternAlterTableDrop     Pattern = "alter_table_drop"
	PatternDeleteWithoutWhere Pattern = "delete_without_where"
	PatternUpdateWithoutWhere Pattern = "update_without_where"
	PatternLockTable          Pattern = "lock_table"
)

// Describe returns an operator-facing label for the pattern.
func (p Pattern) Describe() string {
	switch p {
	case PatternDropObject:
		return "DROP TABLE/INDEX/VIEW/SCHEMA"
	case PatternTruncate:
		return "TRUNCATE"
	case PatternAlterTableDrop:
		return "ALTER TABLE ... DROP"
	case PatternDeleteWithoutWhere:
		return "DELETE without WHERE"
	case PatternUpdateWithoutWhere:
		return "UPDATE without WHERE"
	case PatternLockTable:
		return "LOCK TABLE"
	}
	return string(p)
}

// Finding is one statement that matched one pattern.
type Finding struct {
	Statement int // zero-based index after splitting
	Pattern   Pattern
	Excerpt   string
}

// Assessment is the result of classifying a script.
type Assessment struct {
	Level    Level
	Reasons  map[Pattern]struct{}
	Findings []Finding
}

// Dangerous reports whether any statement was flagged.
func (a Assessment) Dangerous() bool {
	return a.Level == LevelDangerous
}

// Patterns returns the distinct flagged patterns in a stable order.
func (a Assessment) Patterns() []Pattern {
	out := make([]Pattern, 0, len(a.Reasons))
	for p := range a.Reasons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	statementSplit = regexp.MustCompile(`;[\r\n]*`)

	dropObject     = regexp.MustCompile(`(?i)\bdrop\s+(table|index|view|schema)\b`)
	truncate       = regexp.MustCompile(`(?i)\btruncate\b`)
	alterTableDrop = regexp.MustCompile(`(?i)\balter\s+table[\s\S]*\bdrop\b`)
	deleteKeyword  = regexp.MustCompile(`(?i)\bdelete\b`)
	updateKeyword  = regexp.MustCompile(`(?i)\bupdate\b`)
	whereKeyword   = regexp.MustCompile(`(?i)\bwhere\b`)
	lockTable      = regexp.MustCompile(`(?i)\block\s+table\b`)
)

const excerptLen = 80

// SplitStatements splits content on ';' followed by optional line breaks,
// trimming whitespace and dropping empty pieces.
func SplitStatements(content string) []string {
	var out []string
	for _, st := range statementSplit.Split(content, -1) {
		st = strings.TrimSpace(st)
		if st != "" {
			out = append(out, st)
		}
	}
	return out
}

// Classify flags a script as dangerous if any statement matches a destructive pattern.
func Classify(content string) Assessment {
	a := Assessment{Level: LevelSafe, Reasons: map[Pattern]struct{}{}}
	for i, st := range SplitStatements(content) {
		for _, p := range matchStatement(st) {
			a.Reasons[p] = struct{}{}
			a.Findings = append(a.Findings, Finding{Statement: i, Pattern: p, Excerpt: excerpt(st)})
		}
	}
	if len(a.Findings) > 0 {
		a.Level = LevelDangerous
	}
	return a
}

func matchStatement(st string) []Pattern {
	var out []Pattern
	if dropObject.MatchString(st) {
		out = append(out, PatternDropObject)
	}
	if truncate.MatchString(st) {
		out = append(out, PatternTruncate)
	}
	if alterTableDrop.MatchString(st) {
		out = append(out, PatternAlterTableDrop)
	}
	hasWhere := whereKeyword.MatchString(st)
	if deleteKeyword.MatchString(st) && !hasWhere {
		out = append(out, PatternDeleteWithoutWhere)
	}
	if updateKeyword.MatchString(st) && !hasWhere {
		out = append(out, PatternUpdateWithoutWhere)
	}
	if lockTable.MatchString(st) {
		out = append(out, PatternLockTable)
	}
	return out
}

// excerpt collapses whitespace and keeps at most excerptLen runes.
func excerpt(st string) string {
	st = strings.Join(strings.Fields(st), " ")
	if utf8.RuneCountInString(st) <= excerptLen {
		return st
	}
	return string([]rune(st)[:excerptLen]) + "..."
}
