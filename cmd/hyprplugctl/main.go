// Command hyprplugctl is the daemon's CLI client (§4.8), grounded on
// hyprland-community-pyprland's pypr-client.go: read the session
// signature from the environment, dial the daemon's unix socket, send
// one command, print the response.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hyprplug/hyprplugd/internal/ipc"
	"github.com/hyprplug/hyprplugd/internal/wire"
)

const helpText = `
Syntax: hyprplugctl <verb> [args...]

Scratchpad verbs:
  toggle <name>        Toggle scratchpad "name".
  show <name>           Show (spawning if needed) scratchpad "name".
  hide <name>           Hide scratchpad "name" if visible.
  list                  List scratchpads with their current state.
  status                Daemon uptime, loaded plugins, scratchpad count.
  reload                Trigger hot-reload of the configuration file.

Pass-through plugin verbs (opaque to this client, routed by the daemon):
  expose, wall, zoom, attract_lost, shift_monitors, toggle_special,
  change_workspace, relayout, monitors, notify
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "no command passed")
		os.Exit(1)
	}
	if os.Args[1] == "help" {
		fmt.Print(helpText)
		return
	}

	ok, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// run sends one command and prints the daemon's response text. The bool
// result is the response's own ok field (a verb can fail cleanly, e.g.
// "unknown scratchpad"), distinct from err, which is a transport failure.
func run(args []string) (bool, error) {
	sockPath, err := ipc.DefaultSocketPath()
	if err != nil {
		return false, err
	}

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return false, fmt.Errorf("connecting to %s: %w", sockPath, err)
	}
	defer conn.Close()

	req := wire.Request{
		ID:   strconv.FormatInt(time.Now().UnixNano(), 10),
		Verb: args[0],
		Args: args[1:],
	}
	line, err := json.Marshal(req)
	if err != nil {
		return false, err
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		return false, fmt.Errorf("writing request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respLine, err := reader.ReadBytes('\n')
	if err != nil {
		return false, fmt.Errorf("reading response: %w", err)
	}
	var resp wire.Response
	if err := json.Unmarshal(respLine, &resp); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}

	fmt.Println(strings.TrimSpace(resp.Text))
	return resp.OK, nil
}
