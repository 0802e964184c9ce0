//go:build !linux

package notify

// New returns Nop: desktop notifications need D-Bus.
func New() Notifier {
	return Nop{}
}
