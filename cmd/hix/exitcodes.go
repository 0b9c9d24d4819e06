package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file, unknown institution)
	ExitDataError   = 3 // Data error (malformed input, unknown metric or sort key)
	ExitNotFound    = 4 // Researcher not found in the database
	ExitInterrupted = 130
)
