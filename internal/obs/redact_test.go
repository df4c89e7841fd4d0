package obs

import (
	"net/url"
	"strings"
	"testing"
)

func TestIsSensitiveLogField(t *testing.T) {
	sensitive := []string{"token", "Token", "reset_token", "password", "api-key", "X-Auth", "Cookie", "client_secret"}
	for _, key := range sensitive {
		if !IsSensitiveLogField(key) {
			t.Errorf("IsSensitiveLogField(%q) = false, want true", key)
		}
	}

	benign := []string{"email", "tag", "page", "reset", "success", "error"}
	for _, key := range benign {
		if IsSensitiveLogField(key) {
			t.Errorf("IsSensitiveLogField(%q) = true, want false", key)
		}
	}
}

func TestRedactQueryForLog(t *testing.T) {
	q := url.Values{
		"token": {"super-secret-value"},
		"reset": {"requested"},
	}

	got := RedactQueryForLog(q)
	if strings.Contains(got, "super-secret-value") {
		t.Fatalf("token value leaked: %q", got)
	}
	if !strings.Contains(got, "token=[REDACTED]") {
		t.Fatalf("token not redacted: %q", got)
	}
	if !strings.Contains(got, "reset=requested") {
		t.Fatalf("benign param missing: %q", got)
	}

	if got := RedactQueryForLog(url.Values{}); got != "" {
		t.Fatalf("empty query: got %q", got)
	}
}
