package domain

// TerminalState is a snapshot of the embedded terminal session.
type TerminalState struct {
	SizeCols  int  `json:"sizeCols"`
	SizeRows  int  `json:"sizeRows"`
	Connected bool `json:"connected"`
}

// TerminalRead is one drained chunk of terminal output for polling clients.
type TerminalRead struct {
	Output  string `json:"output"`
	Running bool   `json:"running"`
}

// CommandResult captures a completed one-shot command execution.
type CommandResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}
