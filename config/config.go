package config

// Config represents the complete sorrel CLI configuration
type Config struct {
	REPL  REPLConfig  `yaml:"repl"`
	Watch WatchConfig `yaml:"watch"`
}

// REPLConfig holds interactive prompt settings
type REPLConfig struct {
	Prompt      string `yaml:"prompt"`       // Prompt string (default: "> ")
	HistoryFile string `yaml:"history_file"` // Path for persisted history ("" = temp dir)
	Completion  bool   `yaml:"completion"`   // Tab completion over keywords and builtins
}

// WatchConfig holds --watch mode settings
type WatchConfig struct {
	DebounceMS  int  `yaml:"debounce_ms"`  // Quiet period before a re-run (default: 100)
	ClearScreen bool `yaml:"clear_screen"` // Clear the terminal before each re-run
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:     "> ",
			Completion: true,
		},
		Watch: WatchConfig{
			DebounceMS:  100,
			ClearScreen: false,
		},
	}
}
