package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "error"
	DefaultJSONLog           = false
	DefaultBaseURL           = "http://localhost:5229"
	DefaultOutputDir         = "/home/jules/verification"
	DefaultStartupDelay      = 10 * time.Second
	DefaultWaitTimeout       = 30 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultReadyTimeout      = 60 * time.Second
	DefaultBrowserHeadless   = true
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
	DefaultUserAgent         = ""
)
