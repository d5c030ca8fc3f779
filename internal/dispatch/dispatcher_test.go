package dispatch

import (
	"testing"

	"github.com/heytom-labs/heytom-healthroute/internal/snapshot"
)

var tiers = []string{"A", "B", "C"}

func picks(t *testing.T, d *Dispatcher, snap snapshot.Snapshot, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		target, ok := d.Pick(snap)
		if !ok {
			t.Fatalf("pick %d: expect a target", i)
		}
		out = append(out, target.Service+"/"+target.Address)
	}
	return out
}

func assertSeq(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expect %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expect %v, got %v", want, got)
		}
	}
}

func TestPickPrimaryRoundRobin(t *testing.T) {
	d := NewDispatcher(tiers)
	snap := snapshot.Snapshot{"A": {"10.0.0.1", "10.0.0.2"}, "B": {}, "C": {}}

	assertSeq(t, picks(t, d, snap, 3), []string{"A/10.0.0.1", "A/10.0.0.2", "A/10.0.0.1"})
	if d.Cursor("B") != 0 || d.Cursor("C") != 0 {
		t.Fatal("lower tiers must not be consulted while A has members")
	}
}

func TestPickFailsOverToSecondary(t *testing.T) {
	d := NewDispatcher(tiers)
	snap := snapshot.Snapshot{"A": {}, "B": {"10.0.0.5"}, "C": {"10.0.0.9"}}

	assertSeq(t, picks(t, d, snap, 3), []string{"B/10.0.0.5", "B/10.0.0.5", "B/10.0.0.5"})
}

func TestPickFailsOverToLastTier(t *testing.T) {
	d := NewDispatcher(tiers)
	snap := snapshot.Snapshot{"C": {"10.0.0.9", "10.0.0.10"}}

	assertSeq(t, picks(t, d, snap, 2), []string{"C/10.0.0.9", "C/10.0.0.10"})
}

func TestPickAllEmpty(t *testing.T) {
	d := NewDispatcher(tiers)
	for _, snap := range []snapshot.Snapshot{
		{"A": {}, "B": {}, "C": {}},
		{},
		nil,
	} {
		for i := 0; i < 3; i++ {
			if target, ok := d.Pick(snap); ok {
				t.Fatalf("expect no target, got %+v", target)
			}
		}
	}
}

func TestPickRoundRobinCoversEveryMember(t *testing.T) {
	d := NewDispatcher(tiers)
	addrs := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}
	snap := snapshot.Snapshot{"A": addrs}

	for round := 0; round < 3; round++ {
		for i, want := range addrs {
			target, _ := d.Pick(snap)
			if target.Address != want {
				t.Fatalf("round %d pick %d: expect %s, got %s", round, i, want, target.Address)
			}
		}
	}
}

func TestPickWrapsToZero(t *testing.T) {
	d := NewDispatcher(tiers)
	snap := snapshot.Snapshot{"A": {"10.0.0.1", "10.0.0.2", "10.0.0.3"}}

	picks(t, d, snap, 3)
	if d.Cursor("A") != 0 {
		t.Fatalf("expect cursor to wrap to 0, got %d", d.Cursor("A"))
	}
	target, _ := d.Pick(snap)
	if target.Address != "10.0.0.1" {
		t.Fatalf("expect index 0 after wrap, got %s", target.Address)
	}
}

func TestPickClampsAfterListShrinks(t *testing.T) {
	d := NewDispatcher(tiers)
	big := snapshot.Snapshot{"A": {"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}}
	picks(t, d, big, 3) // cursor now 3

	small := snapshot.Snapshot{"A": {"10.0.0.7", "10.0.0.8"}}
	target, ok := d.Pick(small)
	if !ok || target.Address != "10.0.0.8" {
		t.Fatalf("expect cursor 3 clamped to index 1, got %+v", target)
	}
	if c := d.Cursor("A"); c < 0 || c >= 2 {
		t.Fatalf("expect cursor within new list bounds, got %d", c)
	}
}

func TestPickCursorsPerService(t *testing.T) {
	d := NewDispatcher(tiers)

	picks(t, d, snapshot.Snapshot{"A": {"a1", "a2"}}, 1)
	target, _ := d.Pick(snapshot.Snapshot{"A": {}, "B": {"b1", "b2"}})
	if target.Address != "b1" {
		t.Fatalf("expect B to start at its own cursor, got %s", target.Address)
	}
	target, _ = d.Pick(snapshot.Snapshot{"A": {"a1", "a2"}})
	if target.Address != "a2" {
		t.Fatalf("expect A cursor preserved, got %s", target.Address)
	}
}

func TestDispatchersDoNotShareCursors(t *testing.T) {
	snap := snapshot.Snapshot{"A": {"10.0.0.1", "10.0.0.2"}}
	d1, d2 := NewDispatcher(tiers), NewDispatcher(tiers)

	a, _ := d1.Pick(snap)
	b, _ := d2.Pick(snap)
	if a.Address != "10.0.0.1" || b.Address != "10.0.0.1" {
		t.Fatalf("expect independent rotation, got %s and %s", a.Address, b.Address)
	}
}
