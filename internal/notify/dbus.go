//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
)

type dbusNotifier struct {
	obj dbus.BusObject
}

// New returns a D-Bus notifier, or Nop when no session bus is reachable.
func New() Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop{}
	}
	return &dbusNotifier{obj: conn.Object(dbusNotifyDest, dbusNotifyPath)}
}

func (n *dbusNotifier) Notify(notif Notification) error {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant("amflac"),
	}

	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout)
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		"amflac",
		uint32(0),
		"folder-music",
		notif.Title,
		notif.Body,
		[]string{},
		hints,
		notif.Timeout,
	)
	return call.Err
}
