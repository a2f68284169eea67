package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGetAndList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "nc_aspire.xlsx", "xlsx-bytes")
	writeFile(t, root, "bundle/Indicators.csv", "a,b\n1,2\n")
	writeFile(t, root, ".hidden/skip.xlsx", "x")

	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != blob.DriverFilesystem {
		t.Fatalf("driver=%s", s.Driver())
	}

	info, rc, err := s.Get(context.Background(), "nc_aspire.xlsx")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "xlsx-bytes" || info.Size != int64(len("xlsx-bytes")) {
		t.Fatalf("unexpected content %q info=%+v", b, info)
	}

	infos, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "bundle/Indicators.csv" || infos[1].Key != "nc_aspire.xlsx" {
		t.Fatalf("unexpected list: %+v", infos)
	}
}

func TestGetMissingAndTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := s.Get(context.Background(), "missing.xlsx"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
	if _, _, err := s.Get(context.Background(), "../escape.xlsx"); !errors.Is(err, blob.ErrInvalidKey) {
		t.Fatalf("err=%v want ErrInvalidKey", err)
	}
}

func TestNewRequiresDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}
