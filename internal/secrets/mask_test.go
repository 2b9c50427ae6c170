package secrets

import "testing"

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"short":            "***",
		"exactly8":         "***",
		"a-much-longer-pw": "a-mu...",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"postgres", "postgres://roster:s3cret@db:5432/roster?sslmode=disable", "postgres://roster:***@db:5432/roster?sslmode=disable"},
		{"redis no user", "redis://:hunter2@redis:6379/0", "redis://:***@redis:6379/0"},
		{"password with at", "postgres://u:p@ss@db/x", "postgres://u:***@db/x"},
		{"no password", "postgres://u@db/x", "postgres://u@db/x"},
		{"no credentials", "redis://redis:6379", "redis://redis:6379"},
		{"not a url", "redis:6379", "redis:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskURL(tt.in); got != tt.want {
				t.Errorf("MaskURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
