package migration

import "testing"

func TestCanEditScript(t *testing.T) {
	tests := []struct {
		name        string
		ctx         ScriptStateContext
		wantAllowed bool
	}{
		{"pending is editable", ScriptStateContext{Name: "V1__a.sql", Status: StatusPending}, true},
		{"success is read-only", ScriptStateContext{Name: "V1__a.sql", Status: StatusSuccess}, false},
		{"failed is read-only", ScriptStateContext{Name: "V1__a.sql", Status: StatusFailed}, false},
		{"unknown status counts as new", ScriptStateContext{Name: "V1__a.sql"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanEditScript(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !tt.wantAllowed && result.Error() == nil {
				t.Error("expected non-nil error for disallowed result")
			}
		})
	}
}

func TestCanExecuteScript(t *testing.T) {
	tests := []struct {
		name        string
		status      Status
		content     string
		wantAllowed bool
	}{
		{"pending with content", StatusPending, "SELECT 1;", true},
		{"already applied", StatusSuccess, "SELECT 1;", false},
		{"previously failed", StatusFailed, "SELECT 1;", false},
		{"empty content", StatusPending, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanExecuteScript(ScriptStateContext{Name: "V1__a.sql", Status: tt.status}, tt.content)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason: %s)", result.Allowed, tt.wantAllowed, result.Reason)
			}
		})
	}
}

func TestCanSaveScriptName(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		wantAllowed bool
	}{
		{"plain sql file", "V1__a.sql", true},
		{"uppercase extension", "V1__a.SQL", true},
		{"wrong extension", "V1__a.txt", false},
		{"empty", "", false},
		{"nested path", "sub/V1__a.sql", false},
		{"windows path", `sub\V1__a.sql`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSaveScriptName(tt.fileName).Allowed; got != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", got, tt.wantAllowed)
			}
		})
	}
}

func TestStatusEditable(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{"", true},
		{StatusSuccess, false},
		{StatusFailed, false},
	}

	for _, tt := range tests {
		if got := tt.status.Editable(); got != tt.want {
			t.Errorf("Status(%q).Editable() = %v, want %v", tt.status, got, tt.want)
		}
		if got := CanEditScript(ScriptStateContext{Name: "V1__a.sql", Status: tt.status}).Allowed; got != tt.want {
			t.Errorf("CanEditScript(%q).Allowed = %v, want %v", tt.status, got, tt.want)
		}
	}
}
