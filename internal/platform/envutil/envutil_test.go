package envutil

import (
	"testing"
	"time"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("STOPLIGHT_TEST_INT", "abc")
	if got := Int("STOPLIGHT_TEST_INT", 7); got != 7 {
		t.Fatalf("got=%d want=7", got)
	}
	t.Setenv("STOPLIGHT_TEST_INT", " 12 ")
	if got := Int("STOPLIGHT_TEST_INT", 7); got != 12 {
		t.Fatalf("got=%d want=12", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("STOPLIGHT_TEST_BOOL", "on")
	if !Bool("STOPLIGHT_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("STOPLIGHT_TEST_BOOL", "maybe")
	if !Bool("STOPLIGHT_TEST_BOOL", true) {
		t.Fatal("expected default for unknown value")
	}
}

func TestDurationAndList(t *testing.T) {
	t.Setenv("STOPLIGHT_TEST_DUR", "250ms")
	if got := Duration("STOPLIGHT_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("got=%s", got)
	}
	t.Setenv("STOPLIGHT_TEST_LIST", "a, ,b,")
	got := List("STOPLIGHT_TEST_LIST")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got=%v", got)
	}
}
