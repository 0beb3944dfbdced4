package migration

import "testing"

func TestParseName(t *testing.T) {
	tests := []struct {
		name            string
		fileName        string
		wantVersion     string
		wantDescription string
	}{
		{
			name:            "standard versioned script",
			fileName:        "V1__Create_users.sql",
			wantVersion:     "1",
			wantDescription: "Create users",
		},
		{
			name:            "dotted version",
			fileName:        "V1.2.3__add_index_on_email.sql",
			wantVersion:     "1.2.3",
			wantDescription: "add index on email",
		},
		{
			name:            "lowercase prefix and extension",
			fileName:        "v7__seed.SQL",
			wantVersion:     "7",
			wantDescription: "seed",
		},
		{
			name:            "single underscore separator does not match",
			fileName:        "V1_create.sql",
			wantVersion:     "",
			wantDescription: "V1_create.sql",
		},
		{
			name:            "missing prefix",
			fileName:        "create_users.sql",
			wantVersion:     "",
			wantDescription: "create_users.sql",
		},
		{
			name:            "repeatable style name is unparsable",
			fileName:        "R__refresh_views.sql",
			wantVersion:     "",
			wantDescription: "R__refresh_views.sql",
		},
		{
			name:            "description keeps extra double underscores as spaces",
			fileName:        "V2__a__b.sql",
			wantVersion:     "2",
			wantDescription: "a  b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, description := ParseName(tt.fileName)
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if description != tt.wantDescription {
				t.Errorf("description = %q, want %q", description, tt.wantDescription)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int // sign only
	}{
		{"1.2", "1.10", -1},
		{"1.10", "1.2", 1},
		{"2", "2.0.0", 0},
		{"2.0.0", "2", 0},
		{"1", "1", 0},
		{"", "", 0},
		{"", "1", -1},
		{"1.a", "1.0", 0},
		{"3b", "3", 0},
		{"10", "9.9.9", 1},
		{"1.0.1", "1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := CompareVersions(tt.a, tt.b)
			if sign(got) != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSortForBatch(t *testing.T) {
	in := []*Script{
		{Name: "V1.10__c.sql", Version: "1.10"},
		{Name: "V2__b.sql", Version: "2"},
		{Name: "V1.2__z.sql", Version: "1.2"},
		{Name: "V2.0__a.sql", Version: "2.0"},
		{Name: "notes.sql", Version: ""},
	}

	got := SortForBatch(in)

	want := []string{"notes.sql", "V1.2__z.sql", "V1.10__c.sql", "V2.0__a.sql", "V2__b.sql"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, got[i].Name, name)
		}
	}

	if in[0].Name != "V1.10__c.sql" {
		t.Error("SortForBatch must not reorder its input")
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
