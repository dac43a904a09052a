package config

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	// Routing.
	DefaultPreference string  `json:"default_preference"` // shortest | safer | less-secure
	UseAnsiblex       bool    `json:"use_ansiblex"`
	AvoidHazards      bool    `json:"avoid_hazards"`
	SecurityPenalty   float64 `json:"security_penalty"` // cost of an edge against the security bias
	ShortcutWeight    float64 `json:"shortcut_weight"`  // cost of an Ansiblex edge, keep <= 1

	// Map canvas the universe is projected into.
	CanvasWidth   float64 `json:"canvas_width"`
	CanvasHeight  float64 `json:"canvas_height"`
	CanvasPadding float64 `json:"canvas_padding"`

	// Hazard feeds.
	EnableKillFeed    bool `json:"enable_kill_feed"`
	KillWindowMinutes int  `json:"kill_window_minutes"` // rolling window for kill activity
	KillThreshold     int  `json:"kill_threshold"`      // kills in window before a system is hazardous
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DefaultPreference: "shortest",
		SecurityPenalty:   500,
		ShortcutWeight:    0.5,
		CanvasWidth:       2048,
		CanvasHeight:      2048,
		CanvasPadding:     64,
		KillWindowMinutes: 60,
		KillThreshold:     5,
	}
}
