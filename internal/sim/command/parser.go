package command

import "strings"

// Parsed is one command line split into its name and argument words.
type Parsed struct {
	Name string
	Args []string
	Raw  string
}

// Parse splits a command line. A leading slash is optional and the name is
// lower-cased; arguments keep their case.
func Parse(line string) (Parsed, bool) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return Parsed{Raw: line}, false
	}
	return Parsed{Name: strings.ToLower(fields[0]), Args: fields[1:], Raw: line}, true
}
