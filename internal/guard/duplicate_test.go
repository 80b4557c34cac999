package guard

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDuplicateGuardContains(t *testing.T) {
	d := NewDuplicateGuard(10)
	d.Load([]string{"first post", "second post"})

	if !d.Contains("first post") {
		t.Error("Contains should match a loaded post exactly")
	}
	if d.Contains("First post") {
		t.Error("Contains must be exact, not case-insensitive")
	}
	if d.Contains("third post") {
		t.Error("Contains should not match unseen text")
	}

	d.Record("third post")
	if !d.Contains("third post") {
		t.Error("Contains should match a recorded post")
	}
}

func TestDuplicateGuardBound(t *testing.T) {
	d := NewDuplicateGuard(50)
	for i := 0; i < 51; i++ {
		d.Record(fmt.Sprintf("post %d", i))
	}

	got := d.Snapshot()
	if len(got) != 50 {
		t.Fatalf("history length = %d, want 50", len(got))
	}
	if d.Contains("post 0") {
		t.Error("oldest entry should be evicted at the bound")
	}
	if got[0] != "post 1" || got[49] != "post 50" {
		t.Errorf("history window = [%s .. %s], want [post 1 .. post 50]", got[0], got[49])
	}
}

func TestDuplicateGuardLoadTruncates(t *testing.T) {
	d := NewDuplicateGuard(3)
	d.Load([]string{"a", "b", "c", "d", "e"})

	want := []string{"c", "d", "e"}
	if diff := cmp.Diff(want, d.Snapshot()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateGuardDefaultLimit(t *testing.T) {
	d := NewDuplicateGuard(0)
	if d.limit != DefaultHistorySize {
		t.Errorf("limit = %d, want %d", d.limit, DefaultHistorySize)
	}
}
