package errorreporting

import (
	"errors"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestScrubPII(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:        "email address",
			input:       "User email is test@example.com",
			contains:    []string{"User email is", "[REDACTED]"},
			notContains: []string{"test@example.com"},
		},
		{
			name:        "database url",
			input:       "dial postgres://roster:hunter2@db:5432/roster failed",
			contains:    []string{"[REDACTED]", "db:5432/roster"},
			notContains: []string{"hunter2"},
		},
		{
			name:        "password field",
			input:       `password="correcthorse"`,
			contains:    []string{"[REDACTED]"},
			notContains: []string{"correcthorse"},
		},
		{
			name:        "IP address",
			input:       "Request from 192.168.1.1",
			contains:    []string{"Request from", "[REDACTED]"},
			notContains: []string{"192.168.1.1"},
		},
		{
			name:     "no PII",
			input:    "insert student: duplicate key",
			contains: []string{"insert student: duplicate key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scrubPII(tt.input)
			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("expected result to contain %q, got: %s", s, result)
				}
			}
			for _, s := range tt.notContains {
				if strings.Contains(result, s) {
					t.Errorf("expected result to not contain %q, got: %s", s, result)
				}
			}
		})
	}
}

func TestInit_NotConfigured(t *testing.T) {
	if err := Init(Options{}); err != nil {
		t.Errorf("Init should not error when DSN is empty: %v", err)
	}
	if IsSentryEnabled() {
		t.Error("Sentry should stay disabled without a DSN")
	}
}

func TestInit_InvalidDSN(t *testing.T) {
	if err := Init(Options{DSN: "not-a-dsn"}); err == nil {
		t.Error("expected error for malformed DSN")
	}
}

func TestBeforeSend(t *testing.T) {
	event := &sentry.Event{
		Message: "failed for alice@example.com",
		Exception: []sentry.Exception{
			{Value: "connect postgres://u:secretpw@db/roster"},
		},
		Extra: map[string]interface{}{"addr": "10.0.0.7", "count": 3},
		Request: &sentry.Request{
			Headers:     map[string]string{"Authorization": "Bearer x", "Cookie": "c", "Accept": "*/*"},
			QueryString: "token=abc",
			Data:        `{"first_name":"Ada"}`,
		},
	}

	out := beforeSend(event, nil)

	if strings.Contains(out.Message, "alice@example.com") {
		t.Errorf("email not scrubbed: %s", out.Message)
	}
	if strings.Contains(out.Exception[0].Value, "secretpw") {
		t.Errorf("credentials not scrubbed: %s", out.Exception[0].Value)
	}
	if out.Extra["addr"] != "[REDACTED]" {
		t.Errorf("extra not scrubbed: %v", out.Extra["addr"])
	}
	if out.Extra["count"] != 3 {
		t.Error("non-string extras must be preserved")
	}
	if _, ok := out.Request.Headers["Authorization"]; ok {
		t.Error("Authorization header should be removed")
	}
	if _, ok := out.Request.Headers["Cookie"]; ok {
		t.Error("Cookie header should be removed")
	}
	if out.Request.Headers["Accept"] != "*/*" {
		t.Error("unrelated headers should be kept")
	}
	if out.Request.QueryString != "" || out.Request.Data != "" {
		t.Error("query string and body should be cleared")
	}
}

func TestCaptureError_DisabledIsNoop(t *testing.T) {
	CaptureError(nil)
	CaptureError(errors.New("boom"))
	CaptureErrorWithContext(errors.New("boom"), map[string]string{"op": "insert"}, nil)
	if !Flush(0) {
		t.Error("Flush should report success when disabled")
	}
}

func TestValidateDSN(t *testing.T) {
	tests := []struct {
		dsn     string
		wantErr bool
	}{
		{"https://key@o0.ingest.sentry.io/1", false},
		{"http://key@localhost:9000/1", false},
		{"key@host/1", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := ValidateDSN(tt.dsn); (err != nil) != tt.wantErr {
			t.Errorf("ValidateDSN(%q) error = %v, wantErr %v", tt.dsn, err, tt.wantErr)
		}
	}
}
