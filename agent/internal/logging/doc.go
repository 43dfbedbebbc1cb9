// Package logging builds the process-wide slog.Logger from the logging
// section of the config: JSON lines to a file when file logging is enabled,
// otherwise stderr (JSON, plain text, or tint colours on a terminal).
package logging
