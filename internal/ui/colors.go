package ui

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
)

// Bold wraps s in bold styling.
func Bold(s string) string {
	return ColorBold + s + ColorReset
}

// Info renders secondary detail.
func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

// Error renders a failure message.
func Error(s string) string {
	return ColorRed + s + ColorReset
}
