//go:build linux

package notify

import (
	"os"
	"testing"
)

func TestDBusNotify(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	n := New()
	if n == nil {
		t.Fatal("New() returned nil")
	}
	err := n.Notify(Notification{
		Title:   "amflac test",
		Body:    "notification from unit test",
		Timeout: 1000,
		Urgency: UrgencyLow,
	})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}
}
