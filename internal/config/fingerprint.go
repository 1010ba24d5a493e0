package config

import (
	"fmt"
	"strings"
)

// fingerprintDefinition hashes every field that affects runtime behavior.
// Used by hot-reload to decide Added/Removed/Modified (§4.5 step 3). The
// geometry cache keys on geometry.SpecFingerprint instead.
func fingerprintDefinition(d Definition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cmd=%s|class=%s|size=%s|pos=%s|margin=%d|off=%d,%d|max=%s|anim=%s|",
		d.Command, d.MatchClass, d.Size, d.Position, d.Margin, d.OffsetDX, d.OffsetDY, d.MaxSize, d.Animation)
	fmt.Fprintf(&b, "lazy=%t|pinned=%t|smart=%t|closehide=%t|aspect=%t|multi=%t|maxi=%d|",
		d.Lazy, d.Pinned, d.SmartFocus, d.CloseOnHide, d.PreserveAspect, d.MultiWindow, d.MaxInstances)
	fmt.Fprintf(&b, "unfocus=%s|hyst=%s|excl=%s|restoreexcl=%t|forcemon=%s|restorefocus=%t",
		d.Unfocus, d.Hysteresis, strings.Join(d.Excludes, ","), d.RestoreExcluded, d.ForceMonitor, d.RestoreFocus)
	return b.String()
}

// SpawnMatchFingerprint hashes only the fields that identify "the same
// application": the spawn command and match criterion. Hot-reload treats a
// change here as Removed+Added even when other fields preserve state
// (§4.5 step 3).
func (d Definition) SpawnMatchFingerprint() string {
	return d.Command + "|" + d.MatchClass
}

// CosmeticFingerprint hashes only fields a running instance can adopt
// without being torn down: geometry, animation, and focus behavior.
func (d Definition) CosmeticFingerprint() string {
	return fmt.Sprintf("size=%s|pos=%s|margin=%d|off=%d,%d|max=%s|anim=%s|smart=%t|restorefocus=%t",
		d.Size, d.Position, d.Margin, d.OffsetDX, d.OffsetDY, d.MaxSize, d.Animation, d.SmartFocus, d.RestoreFocus)
}
