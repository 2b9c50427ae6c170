package utils

import (
	"reflect"
	"testing"
	"time"
)

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			t.Setenv("ROSTER_TEST_BOOL", tt.val)
			if got := GetEnvAsBool("ROSTER_TEST_BOOL", tt.def); got != tt.want {
				t.Errorf("GetEnvAsBool(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("ROSTER_TEST_MS", "250")
	if got := GetEnvAsDuration("ROSTER_TEST_MS", time.Millisecond, time.Second); got != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", got)
	}

	t.Setenv("ROSTER_TEST_MS", "-4")
	if got := GetEnvAsDuration("ROSTER_TEST_MS", time.Millisecond, time.Second); got != time.Second {
		t.Errorf("expected fallback to 1s for negative value, got %v", got)
	}

	t.Setenv("ROSTER_TEST_MS", "abc")
	if got := GetEnvAsDuration("ROSTER_TEST_MS", time.Millisecond, time.Second); got != time.Second {
		t.Errorf("expected fallback to 1s for garbage, got %v", got)
	}
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("ROSTER_TEST_LIST", " a, b ,,c ")
	got := GetEnvAsSlice("ROSTER_TEST_LIST", nil, ",")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected slice: %#v", got)
	}

	t.Setenv("ROSTER_TEST_LIST", " , ")
	got = GetEnvAsSlice("ROSTER_TEST_LIST", []string{"x"}, ",")
	if !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("expected default for blank parts, got %#v", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ROSTER_TEST_STR", "  value ")
	if got := GetEnv("ROSTER_TEST_STR", "def"); got != "value" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	t.Setenv("ROSTER_TEST_STR", "   ")
	if got := GetEnv("ROSTER_TEST_STR", "def"); got != "def" {
		t.Errorf("expected default, got %q", got)
	}
}
