package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Target
	BaseURL   string
	OutputDir string

	// Timing
	StartupDelay      time.Duration
	WaitTimeout       time.Duration
	NavigationTimeout time.Duration
	ReadyProbe        bool
	ReadyTimeout      time.Duration

	// Browser
	Headless       bool
	ChromePath     string
	UserAgent      string
	Proxy          string
	ViewportWidth  int
	ViewportHeight int

	// Outputs
	Strict      bool
	ReportPath  string
	MetricsFile string
	Snapshot    bool
	Progress    bool
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		BaseURL:           DefaultBaseURL,
		OutputDir:         DefaultOutputDir,
		StartupDelay:      DefaultStartupDelay,
		WaitTimeout:       DefaultWaitTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		ReadyTimeout:      DefaultReadyTimeout,
		Headless:          DefaultBrowserHeadless,
		UserAgent:         DefaultUserAgent,
		ViewportWidth:     DefaultViewportWidth,
		ViewportHeight:    DefaultViewportHeight,
	}
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Flags only override when they were set explicitly on the command line.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cfg, cmd.Flags()); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("FRONTCHECK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("FRONTCHECK_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("FRONTCHECK_STARTUP_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FRONTCHECK_STARTUP_DELAY: %w", err)
		}
		cfg.StartupDelay = d
	}
	if v := os.Getenv("FRONTCHECK_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("FRONTCHECK_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("FRONTCHECK_PROXY"); v != "" {
		cfg.Proxy = v
	}
	return nil
}

func applyFlags(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	changed := func(name string) (string, bool) {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			return "", false
		}
		return f.Value.String(), true
	}
	duration := func(name string, dst *time.Duration) {
		if s, ok := changed(name); ok && err == nil {
			var d time.Duration
			if d, err = time.ParseDuration(s); err != nil {
				err = fmt.Errorf("--%s: %w", name, err)
				return
			}
			*dst = d
		}
	}
	boolean := func(name string, dst *bool) {
		if s, ok := changed(name); ok {
			*dst = s == "true"
		}
	}
	str := func(name string, dst *string) {
		if s, ok := changed(name); ok {
			*dst = s
		}
	}

	str("log-level", &cfg.LogLevel)
	if s, ok := changed("verbose"); ok && s == "true" {
		cfg.LogLevel = "debug"
	}
	boolean("json", &cfg.JSONLog)
	str("base-url", &cfg.BaseURL)
	str("output-dir", &cfg.OutputDir)
	duration("startup-delay", &cfg.StartupDelay)
	duration("wait-timeout", &cfg.WaitTimeout)
	duration("nav-timeout", &cfg.NavigationTimeout)
	boolean("ready-probe", &cfg.ReadyProbe)
	duration("ready-timeout", &cfg.ReadyTimeout)
	if s, ok := changed("headful"); ok {
		cfg.Headless = s != "true"
	}
	str("chrome-path", &cfg.ChromePath)
	str("user-agent", &cfg.UserAgent)
	str("proxy", &cfg.Proxy)
	boolean("strict", &cfg.Strict)
	str("report", &cfg.ReportPath)
	str("metrics-file", &cfg.MetricsFile)
	boolean("snapshot", &cfg.Snapshot)
	boolean("progress", &cfg.Progress)
	if err != nil {
		return err
	}

	if s, ok := changed("viewport"); ok {
		w, h, perr := ParseViewport(s)
		if perr != nil {
			return fmt.Errorf("--viewport: %w", perr)
		}
		cfg.ViewportWidth, cfg.ViewportHeight = w, h
	}
	return nil
}

// ParseViewport parses a WIDTHxHEIGHT string such as "1280x720".
func ParseViewport(s string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", parts[1])
	}
	return w, h, nil
}
