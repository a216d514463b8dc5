package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-level", DefaultLogLevel, "Log level on stderr: debug, info, warn or error")
	cmd.PersistentFlags().Bool("json", false, "Emit logs as JSON on stderr")
	cmd.PersistentFlags().String("base-url", DefaultBaseURL, "Origin of the application under test")
	cmd.PersistentFlags().String("output-dir", DefaultOutputDir, "Existing directory that receives the screenshots")
	cmd.PersistentFlags().Duration("startup-delay", DefaultStartupDelay, "Fixed wait before the first navigation")
	cmd.PersistentFlags().Duration("wait-timeout", DefaultWaitTimeout, "Maximum wait for each page marker")
	cmd.PersistentFlags().Duration("nav-timeout", DefaultNavigationTimeout, "Maximum wait for each page load")
	cmd.PersistentFlags().Bool("ready-probe", false, "Poll the base URL until it answers instead of the fixed startup delay")
	cmd.PersistentFlags().Duration("ready-timeout", DefaultReadyTimeout, "Upper bound for --ready-probe")
	cmd.PersistentFlags().Bool("headful", false, "Show the browser window")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome/Chromium executable (auto-detected when empty)")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("viewport", "1280x720", "Browser viewport as WIDTHxHEIGHT")
	cmd.PersistentFlags().Bool("strict", false, "Exit with status 1 when a step fails")
	cmd.PersistentFlags().String("report", "", "Write a JSON run report to this path")
	cmd.PersistentFlags().String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.PersistentFlags().Bool("snapshot", false, "Save a Markdown text snapshot next to each screenshot")
	cmd.PersistentFlags().Bool("progress", false, "Show a progress bar on stderr")
}
