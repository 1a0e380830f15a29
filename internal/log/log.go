// Package log wires the slog handler for the CLI based on its logging
// flags.
package log

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// RegisterLoggingFlags adds the persistent logging flags to a command.
func RegisterLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("loglevel", "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringP("logformat", "f", "text", "set the log format (text, json)")
}

// GetBaseLogger builds a slog.Logger from the command's logging flags.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("logformat")
	if err != nil {
		return nil, err
	}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

// GetLoggerLevel parses the loglevel flag.
func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	logLevel, err := cmd.Flags().GetString("loglevel")
	if err != nil {
		return slog.LevelWarn, err
	}
	switch logLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", logLevel)
	}
}
