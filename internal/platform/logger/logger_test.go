package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"family_code", "F-001",
		"redis_password", "hunter2",
		"runlog_dsn", "postgres://u:p@h/db",
		"rows", 12,
	})
	if len(out) != 8 {
		t.Fatalf("unexpected kv length: %d", len(out))
	}
	hashed, _ := out[1].(string)
	if !strings.HasPrefix(hashed, "hash:") || strings.Contains(hashed, "F-001") {
		t.Fatalf("family code not hashed: %q", hashed)
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("password not redacted: %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("dsn not redacted: %v", out[5])
	}
	if out[7] != 12 {
		t.Fatalf("plain value changed: %v", out[7])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"rows", 3, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestHashValueStable(t *testing.T) {
	if hashValue("F1") != hashValue("F1") {
		t.Fatal("hash must be stable")
	}
	if hashValue("") != "" {
		t.Fatal("empty input must hash to empty")
	}
}
