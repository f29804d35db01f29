package terminal

import "strings"

// localCommands are resolved entirely in the UI with no shell round-trip.
var localCommands = map[string]bool{
	"clear": true,
	"cls":   true,
	"help":  true,
}

// IsLocalCommand reports whether input is a client-side command that must
// not be forwarded to the shell.
func IsLocalCommand(input string) bool {
	return localCommands[strings.ToLower(strings.TrimSpace(input))]
}
