package command

import "strings"

// ParseResult is a split input line.
type ParseResult struct {
	// Command is the first word, lowercased.
	Command string
	Args    []string
}

// Parse splits line into a lowercased command word and whitespace-separated
// arguments.
//
// Postcondition: Command is empty only when line is blank; Args is nil when
// no arguments follow.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Command: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

// Arg returns the i'th argument, or "" if absent.
func (p ParseResult) Arg(i int) string {
	if i < 0 || i >= len(p.Args) {
		return ""
	}
	return p.Args[i]
}
