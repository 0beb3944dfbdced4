package migration

import (
	"strings"
	"time"
)

// MatchHistory returns the first ledger entry that belongs to the script, or nil.
// An entry matches when the filenames are equal ignoring case, or when both
// versions are non-empty and equal.
func MatchHistory(s *Script, history []HistoryEntry) *HistoryEntry {
	name := strings.ToLower(s.Name)
	for i := range history {
		h := &history[i]
		if strings.ToLower(h.Script) == name {
			return h
		}
		if h.Version != "" && s.Version != "" && h.Version == s.Version {
			return h
		}
	}
	return nil
}

// derivedState is the part of a script that Reconcile owns.
type derivedState struct {
	status          Status
	installedOn     *time.Time
	executionTimeMs *int
}

func deriveState(s *Script, history []HistoryEntry) derivedState {
	h := MatchHistory(s, history)
	if h == nil {
		return derivedState{status: StatusPending}
	}
	if !h.Success {
		return derivedState{status: StatusFailed}
	}
	installedOn := h.InstalledOn
	execMs := h.ExecutionTimeMs
	return derivedState{
		status:          StatusSuccess,
		installedOn:     &installedOn,
		executionTimeMs: &execMs,
	}
}

// Reconcile derives each script's status from the ledger.
//
// Scripts whose status and installedOn are unchanged are returned as the same
// pointers, and when no script changed the input slice itself is returned with
// changed == false. Callers can therefore feed the previous result back in and
// compare identities to skip redundant work.
func Reconcile(scripts []*Script, history []HistoryEntry) (out []*Script, changed bool) {
	next := make([]*Script, len(scripts))
	for i, s := range scripts {
		d := deriveState(s, history)
		if d.status == s.Status && sameInstant(d.installedOn, s.InstalledOn) {
			next[i] = s
			continue
		}
		updated := *s
		updated.Status = d.status
		updated.InstalledOn = d.installedOn
		updated.ExecutionTimeMs = d.executionTimeMs
		next[i] = &updated
		changed = true
	}
	if !changed {
		return scripts, false
	}
	return next, true
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Summary counts scripts per status.
type Summary struct {
	Pending int
	Success int
	Failed  int
}

// Summarize tallies the statuses of reconciled scripts.
func Summarize(scripts []*Script) Summary {
	var sum Summary
	for _, s := range scripts {
		switch s.Status {
		case StatusSuccess:
			sum.Success++
		case StatusFailed:
			sum.Failed++
		default:
			sum.Pending++
		}
	}
	return sum
}

// PendingScripts returns the Pending scripts in their original order.
func PendingScripts(scripts []*Script) []*Script {
	var out []*Script
	for _, s := range scripts {
		if s.Status.Editable() {
			out = append(out, s)
		}
	}
	return out
}
