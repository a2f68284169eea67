package memory

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/stoplight-backend/internal/blob"
)

func TestPutGetList(t *testing.T) {
	s := New()
	if _, err := s.Put("b.xlsx", []byte("two")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("a.xlsx", []byte("one")); err != nil {
		t.Fatal(err)
	}

	_, rc, err := s.Get(context.Background(), "a.xlsx")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "one" {
		t.Fatalf("got=%q", b)
	}

	infos, _ := s.List(context.Background(), "")
	if len(infos) != 2 || infos[0].Key != "a.xlsx" {
		t.Fatalf("unexpected list: %+v", infos)
	}

	if _, _, err := s.Get(context.Background(), "c.xlsx"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}
