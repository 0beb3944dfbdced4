package migration

import "testing"

func TestChecksum_GoldenVectors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int32
	}{
		{"empty", "", 0},
		{"check string", "123456789", -873187034},
		{"single char", "a", -390611389},
		{"pangram", "The quick brown fox jumps over the lazy dog", 1095738169},
		{"ddl", "CREATE TABLE users (id INT PRIMARY KEY);\n", 2095211024},
		{"latin-1 char uses its code unit", "é", 198489425},
		{"bmp char uses low byte of code unit", "€", 224526414},
		{"astral char uses both surrogates", "😀", 724654657},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.content); got != tt.want {
				t.Errorf("Checksum(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}

func TestChecksum_Stable(t *testing.T) {
	content := "ALTER TABLE users ADD COLUMN email VARCHAR(255);"
	first := Checksum(content)
	for i := 0; i < 5; i++ {
		if got := Checksum(content); got != first {
			t.Fatalf("call %d: got %d, want %d", i, got, first)
		}
	}
}
