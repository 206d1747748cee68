package notify

import (
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcher_ShowDefaults(t *testing.T) {
	d := NewDispatcher(0)
	defer d.Close()

	n := d.Show("Transaction added")
	if n.Severity != Success {
		t.Errorf("severity = %s, want success", n.Severity)
	}
	if n.ExpiresAt == nil || n.ExpiresAt.Sub(n.CreatedAt) != DefaultDuration {
		t.Errorf("expiresAt = %v", n.ExpiresAt)
	}
	if active := d.Active(); len(active) != 1 || active[0].ID != n.ID {
		t.Errorf("active = %+v", active)
	}
}

func TestDispatcher_AutoDismiss(t *testing.T) {
	d := NewDispatcher(20 * time.Millisecond)
	defer d.Close()

	d.Show("short")
	sticky := d.Show("sticky", WithDuration(0), WithSeverity(Error))

	waitFor(t, func() bool { return len(d.Active()) == 1 })
	active := d.Active()
	if active[0].ID != sticky.ID || active[0].Severity != Error || active[0].ExpiresAt != nil {
		t.Errorf("remaining = %+v", active[0])
	}
}

func TestDispatcher_Dismiss(t *testing.T) {
	d := NewDispatcher(time.Minute)
	defer d.Close()

	a := d.Show("a")
	b := d.Show("b", WithSeverity(Warning))
	c := d.Show("c", WithSeverity(Info))

	if !d.Dismiss(b.ID) {
		t.Fatal("expected dismiss to succeed")
	}
	if d.Dismiss(b.ID) {
		t.Error("second dismiss must report false")
	}

	active := d.Active()
	if len(active) != 2 || active[0].ID != a.ID || active[1].ID != c.ID {
		t.Errorf("active order = %+v", active)
	}
}

func TestDispatcher_UnknownSeverityKeepsDefault(t *testing.T) {
	d := NewDispatcher(time.Minute)
	defer d.Close()

	if n := d.Show("x", WithSeverity("panic")); n.Severity != Success {
		t.Errorf("severity = %s", n.Severity)
	}
}

func TestDispatcher_Close(t *testing.T) {
	d := NewDispatcher(10 * time.Millisecond)
	d.Show("a")
	d.Close()

	if len(d.Active()) != 0 {
		t.Error("close must drop notifications")
	}
	d.Show("after close")
	if len(d.Active()) != 0 {
		t.Error("closed dispatcher must not retain notifications")
	}
}
