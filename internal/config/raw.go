package config

// rawScratchpad mirrors the TOML shape of a [<section>.scratchpads.<name>]
// table, prior to variable expansion and defaulting.
type rawScratchpad struct {
	Command         string   `toml:"command"`
	Class           string   `toml:"class"`
	Size            string   `toml:"size"`
	Position        string   `toml:"position"`
	Margin          int      `toml:"margin"`
	Offset          string   `toml:"offset"`
	MaxSize         string   `toml:"max_size"`
	Animation       string   `toml:"animation"`
	Lazy            bool     `toml:"lazy"`
	Pinned          bool     `toml:"pinned"`
	SmartFocus      *bool    `toml:"smart_focus"`
	CloseOnHide     bool     `toml:"close_on_hide"`
	PreserveAspect  bool     `toml:"preserve_aspect"`
	MultiWindow     bool     `toml:"multi_window"`
	MaxInstances    int      `toml:"max_instances"`
	Unfocus         string   `toml:"unfocus"`
	Hysteresis      float64  `toml:"hysteresis"`
	Excludes        []string `toml:"excludes"`
	RestoreExcluded bool     `toml:"restore_excluded"`
	ForceMonitor    string   `toml:"force_monitor"`
	RestoreFocus    *bool    `toml:"restore_focus"`
}

// rawSection mirrors one of the two accepted top-level sections (§4.7,
// §6.3): a plugin list, a variable map, and per-plugin sub-tables. Only
// the scratchpads sub-table is decoded; other plugin sub-tables are
// ignored and are not kept or diffed by hot-reload.
type rawSection struct {
	Plugins     []string                 `toml:"plugins"`
	Variables   map[string]string        `toml:"variables"`
	Scratchpads map[string]rawScratchpad `toml:"scratchpads"`
}

// rawRoot is the top-level TOML document: two equivalently-shaped
// sections, named "hyprplug" (current) and "rustr" (accepted alias),
// merged by Load per §4.7.
type rawRoot struct {
	Hyprplug *rawSection `toml:"hyprplug"`
	Rustr    *rawSection `toml:"rustr"`
}
