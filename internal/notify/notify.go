// Package notify sends desktop notifications when downloads finish.
package notify

import "strconv"

// Urgency is the freedesktop notification priority.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is one desktop message.
type Notification struct {
	Title   string
	Body    string
	Timeout int32 // ms, -1 = server default
	Urgency Urgency
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(n Notification) error
}

// Nop discards every notification.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(Notification) error { return nil }

// Session builds the notification shown when a download session ends.
func Session(name string, files, failed int, success bool) Notification {
	n := Notification{
		Title:   "Download complete",
		Body:    name,
		Timeout: -1,
		Urgency: UrgencyNormal,
	}
	switch {
	case files == 0:
		n.Title = "Download failed"
		n.Urgency = UrgencyCritical
	case !success || failed > 0:
		n.Title = "Download incomplete"
	}
	if files > 0 {
		n.Body = plural(files, "file") + " in " + name
	}
	if failed > 0 {
		n.Body += ", " + plural(failed, "track") + " failed"
	}
	return n
}

func plural(n int, word string) string {
	s := strconv.Itoa(n) + " " + word
	if n != 1 {
		s += "s"
	}
	return s
}
