package gcs

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

func TestEmulatorMissingObject(t *testing.T) {
	host := strings.TrimSpace(os.Getenv("STOPLIGHT_TEST_GCS_EMULATOR"))
	bucket := strings.TrimSpace(os.Getenv("STOPLIGHT_TEST_GCS_BUCKET"))
	if host == "" || bucket == "" {
		t.Skip("STOPLIGHT_TEST_GCS_EMULATOR / STOPLIGHT_TEST_GCS_BUCKET not set")
	}
	s, err := New(context.Background(), Config{Bucket: bucket, EmulatorHost: host})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	if _, _, err := s.Get(context.Background(), "definitely-missing.xlsx"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error")
	}
}
