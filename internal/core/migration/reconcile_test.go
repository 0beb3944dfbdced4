package migration

import (
	"testing"
	"time"
)

func newScript(name string) *Script {
	version, description := ParseName(name)
	return &Script{
		ID:          "id-" + name,
		Name:        name,
		Version:     version,
		Description: description,
		Status:      InitialStatus(),
	}
}

func TestReconcile_SuccessMatchByNameIgnoresCase(t *testing.T) {
	installed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	scripts := []*Script{newScript("V1__Create_users.sql")}
	history := []HistoryEntry{
		{InstalledRank: 1, Script: "v1__create_USERS.sql", Success: true, InstalledOn: installed, ExecutionTimeMs: 42},
	}

	out, changed := Reconcile(scripts, history)

	if !changed {
		t.Fatal("expected changed = true")
	}
	got := out[0]
	if got.Status != StatusSuccess {
		t.Fatalf("status = %s, want SUCCESS", got.Status)
	}
	if got.InstalledOn == nil || !got.InstalledOn.Equal(installed) {
		t.Errorf("installedOn = %v, want %v", got.InstalledOn, installed)
	}
	if got.ExecutionTimeMs == nil || *got.ExecutionTimeMs != 42 {
		t.Errorf("executionTimeMs = %v, want 42", got.ExecutionTimeMs)
	}
	if scripts[0].Status != StatusPending {
		t.Error("input script must not be mutated")
	}
}

func TestReconcile_MatchByVersion(t *testing.T) {
	scripts := []*Script{newScript("V3__renamed_later.sql")}
	history := []HistoryEntry{
		{InstalledRank: 1, Version: "3", Script: "V3__original_name.sql", Success: true},
	}

	out, _ := Reconcile(scripts, history)

	if out[0].Status != StatusSuccess {
		t.Errorf("status = %s, want SUCCESS", out[0].Status)
	}
}

func TestReconcile_EmptyVersionsNeverMatch(t *testing.T) {
	scripts := []*Script{newScript("adhoc.sql")}
	history := []HistoryEntry{
		{InstalledRank: 1, Version: "", Script: "other.sql", Success: true},
	}

	out, changed := Reconcile(scripts, history)

	if changed {
		t.Error("expected no change")
	}
	if out[0].Status != StatusPending {
		t.Errorf("status = %s, want PENDING", out[0].Status)
	}
}

func TestReconcile_FailedCarriesNoTimestamps(t *testing.T) {
	scripts := []*Script{newScript("V2__broken.sql")}
	history := []HistoryEntry{
		{InstalledRank: 4, Version: "2", Script: "V2__broken.sql", Success: false, InstalledOn: time.Now(), ExecutionTimeMs: 7},
	}

	out, _ := Reconcile(scripts, history)

	got := out[0]
	if got.Status != StatusFailed {
		t.Fatalf("status = %s, want FAILED", got.Status)
	}
	if got.InstalledOn != nil || got.ExecutionTimeMs != nil {
		t.Error("failed scripts must not carry installedOn or executionTimeMs")
	}
}

func TestReconcile_FirstMatchWins(t *testing.T) {
	scripts := []*Script{newScript("V5__x.sql")}
	history := []HistoryEntry{
		{InstalledRank: 1, Version: "5", Script: "V5__x.sql", Success: false},
		{InstalledRank: 2, Version: "5", Script: "V5__x.sql", Success: true},
	}

	out, _ := Reconcile(scripts, history)

	if out[0].Status != StatusFailed {
		t.Errorf("status = %s, want FAILED (first record wins)", out[0].Status)
	}
}

func TestReconcile_NoMatchIsPending(t *testing.T) {
	scripts := []*Script{newScript("V9__new.sql")}
	history := []HistoryEntry{
		{InstalledRank: 1, Version: "1", Script: "V1__a.sql", Success: true},
		{InstalledRank: 2, Version: "2", Script: "V2__b.sql", Success: false},
	}

	out, _ := Reconcile(scripts, history)

	if out[0].Status != StatusPending {
		t.Errorf("status = %s, want PENDING", out[0].Status)
	}
}

func TestReconcile_PreservesIdentityWhenUnchanged(t *testing.T) {
	installed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	scripts := []*Script{
		newScript("V1__a.sql"),
		newScript("V2__b.sql"),
		newScript("V3__c.sql"),
	}
	history := []HistoryEntry{
		{InstalledRank: 1, Version: "1", Script: "V1__a.sql", Success: true, InstalledOn: installed},
	}

	first, changed := Reconcile(scripts, history)
	if !changed {
		t.Fatal("first pass should change V1")
	}
	if first[1] != scripts[1] || first[2] != scripts[2] {
		t.Error("unaffected scripts must keep their identity on the first pass")
	}

	second, changed := Reconcile(first, history)
	if changed {
		t.Error("second pass with unchanged inputs must report no change")
	}
	for i := range first {
		if second[i] != first[i] {
			t.Errorf("script %d: identity changed on idempotent pass", i)
		}
	}
	if &second[0] != &first[0] {
		t.Error("unchanged pass must return the same slice")
	}
}

func TestReconcile_StatusRevertsWhenLedgerUnavailable(t *testing.T) {
	installed := time.Now()
	scripts := []*Script{newScript("V1__a.sql")}
	history := []HistoryEntry{{InstalledRank: 1, Version: "1", Script: "V1__a.sql", Success: true, InstalledOn: installed}}

	applied, _ := Reconcile(scripts, history)
	reverted, changed := Reconcile(applied, nil)

	if !changed {
		t.Fatal("expected change when history disappears")
	}
	if reverted[0].Status != StatusPending || reverted[0].InstalledOn != nil {
		t.Errorf("got status %s installedOn %v, want PENDING with no timestamp", reverted[0].Status, reverted[0].InstalledOn)
	}
}

func TestSummarizeAndPending(t *testing.T) {
	scripts := []*Script{
		{Name: "a", Status: StatusPending},
		{Name: "b", Status: StatusSuccess},
		{Name: "c", Status: StatusFailed},
		{Name: "d", Status: StatusPending},
	}

	sum := Summarize(scripts)
	if sum.Pending != 2 || sum.Success != 1 || sum.Failed != 1 {
		t.Errorf("summary = %+v", sum)
	}

	pending := PendingScripts(scripts)
	if len(pending) != 2 || pending[0].Name != "a" || pending[1].Name != "d" {
		t.Errorf("pending = %v", pending)
	}
}
