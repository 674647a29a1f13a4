// Package telnet provides the Telnet transport for fortune sessions.
package telnet

// ANSI escape sequences used by the session renderer.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"

	BrightYellow  = "\033[93m"
	BrightMagenta = "\033[95m"
)

// Colorize wraps text with color and a reset suffix.
func Colorize(color, text string) string {
	return color + text + Reset
}

// ScoreColor picks the color a luck score is shown in.
func ScoreColor(score int) string {
	switch {
	case score >= 100:
		return Bold + BrightMagenta
	case score >= 70:
		return BrightYellow
	case score >= 30:
		return Green
	default:
		return Red
	}
}

// StripANSI removes CSI color sequences ("\033[...m") from s.
//
// Postcondition: The result contains no complete color sequence.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
