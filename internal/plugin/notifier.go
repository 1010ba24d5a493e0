package plugin

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/wire"
)

// Notifier implements the `notify` verb by forwarding to the desktop
// notification bus. It is grounded on the teacher's systemd.go pattern of
// holding a package-level *dbus.Conn opened once at construction and
// reused for every call, rather than dialing per-request.
type Notifier struct {
	conn   *dbus.Conn
	logger hclog.Logger
}

// NewNotifier opens a session-bus connection. A failure to connect is not
// fatal to the daemon (§7: nothing is fatal except the IPC listener); the
// plugin degrades to reporting failures per-call instead.
func NewNotifier(logger hclog.Logger) *Notifier {
	logger = logger.Named("notify")
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		logger.Warn("session bus connect failed, notify verb will fail until restart", "error", err)
		return &Notifier{logger: logger}
	}
	if err := conn.Auth(nil); err != nil {
		logger.Warn("session bus auth failed", "error", err)
		_ = conn.Close()
		return &Notifier{logger: logger}
	}
	if err := conn.Hello(); err != nil {
		logger.Warn("session bus hello failed", "error", err)
		_ = conn.Close()
		return &Notifier{logger: logger}
	}
	return &Notifier{conn: conn, logger: logger}
}

func (n *Notifier) Name() string { return "system_notifier" }

func (n *Notifier) Handles(verb string) bool { return verb == "notify" }

func (n *Notifier) Handle(_ context.Context, verb string, args []string) (wire.Response, error) {
	if n.conn == nil {
		return wire.Errorf("", "notify: desktop notification bus unavailable"), nil
	}
	if len(args) == 0 {
		return wire.Errorf("", "notify: requires a summary argument"), nil
	}
	summary := args[0]
	body := ""
	if len(args) > 1 {
		body = strings.Join(args[1:], " ")
	}

	obj := n.conn.Object("org.freedesktop.Notifications", dbus.ObjectPath("/org/freedesktop/Notifications"))
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"hyprplugd", uint32(0), "", summary, body, []string{}, map[string]dbus.Variant{}, int32(5000))
	if call.Err != nil {
		n.logger.Error("notify call failed", "error", call.Err)
		return wire.Errorf("", "notify: %v", call.Err), nil
	}
	return wire.OK("", fmt.Sprintf("notified %q", summary), nil), nil
}

// Close releases the bus connection. The daemon's shutdown path does not
// call it; the connection is released when the process exits.
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
