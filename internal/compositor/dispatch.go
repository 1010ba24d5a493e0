package compositor

import "fmt"

// OpKind tags the variant held by an Op (§9 "tagged variants").
type OpKind int

const (
	OpMoveToWorkspace OpKind = iota
	OpMoveWindowPixel
	OpResizeWindowPixel
	OpFocusWindow
	OpSetFloating
	OpToggleSpecialWorkspace
	OpCloseWindow
	OpSpawn
)

// Op is one outbound dispatch request (§4.1 contracts). Best-effort:
// Dispatch returns success once the compositor acknowledges the request,
// not once it is visually effective.
type Op struct {
	Kind      OpKind
	Handle    Handle
	Workspace string // numeric id or "special:<name>"
	DX, DY    int
	DW, DH    int
	Bool      bool
	Name      string // special-workspace name for OpToggleSpecialWorkspace
	Command   string // for OpSpawn
}

// render produces the hyprctl dispatch command line for op, in Hyprland's
// own dispatcher vocabulary.
func (op Op) render() (string, error) {
	switch op.Kind {
	case OpMoveToWorkspace:
		return fmt.Sprintf("dispatch movetoworkspacesilent %s,address:%s", op.Workspace, op.Handle), nil
	case OpMoveWindowPixel:
		return fmt.Sprintf("dispatch movewindowpixel exact %d %d,address:%s", op.DX, op.DY, op.Handle), nil
	case OpResizeWindowPixel:
		return fmt.Sprintf("dispatch resizewindowpixel exact %d %d,address:%s", op.DW, op.DH, op.Handle), nil
	case OpFocusWindow:
		return fmt.Sprintf("dispatch focuswindow address:%s", op.Handle), nil
	case OpSetFloating:
		return fmt.Sprintf("dispatch setfloating address:%s,%t", op.Handle, op.Bool), nil
	case OpToggleSpecialWorkspace:
		return fmt.Sprintf("dispatch togglespecialworkspace %s", op.Name), nil
	case OpCloseWindow:
		return fmt.Sprintf("dispatch closewindow address:%s", op.Handle), nil
	case OpSpawn:
		return fmt.Sprintf("dispatch exec %s", op.Command), nil
	default:
		return "", fmt.Errorf("compositor: unknown op kind %d", op.Kind)
	}
}

// MoveToWorkspace builds the move-to-workspace op (numeric id or
// "special:<name>").
func MoveToWorkspace(h Handle, workspace string) Op {
	return Op{Kind: OpMoveToWorkspace, Handle: h, Workspace: workspace}
}

// MoveWindowPixel builds a pixel move op to the absolute position (dx, dy);
// it renders as Hyprland's "exact" form.
func MoveWindowPixel(h Handle, dx, dy int) Op {
	return Op{Kind: OpMoveWindowPixel, Handle: h, DX: dx, DY: dy}
}

// ResizeWindowPixel builds a pixel resize op to the absolute size (dw, dh);
// it renders as Hyprland's "exact" form.
func ResizeWindowPixel(h Handle, dw, dh int) Op {
	return Op{Kind: OpResizeWindowPixel, Handle: h, DW: dw, DH: dh}
}

// FocusWindow builds a focus op.
func FocusWindow(h Handle) Op { return Op{Kind: OpFocusWindow, Handle: h} }

// SetFloating builds a floating-state toggle op.
func SetFloating(h Handle, floating bool) Op {
	return Op{Kind: OpSetFloating, Handle: h, Bool: floating}
}

// ToggleSpecialWorkspace builds a special-workspace toggle op.
func ToggleSpecialWorkspace(name string) Op {
	return Op{Kind: OpToggleSpecialWorkspace, Name: name}
}

// CloseWindow builds a close op.
func CloseWindow(h Handle) Op { return Op{Kind: OpCloseWindow, Handle: h} }

// Spawn builds a spawn op for a command line, optionally carrying embedded
// window rules (Hyprland's own `exec` dispatcher syntax already supports
// `[rule] cmd`; callers pass the full string through unchanged).
func Spawn(commandLine string) Op { return Op{Kind: OpSpawn, Command: commandLine} }
