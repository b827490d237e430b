package logger

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraLogLevelFlag adds a persistent --log-level flag to root and
// applies it to the global logger before any command runs.
func AttachCobraLogLevelFlag(root *cobra.Command) {
	var levelName string

	root.PersistentFlags().StringVar(&levelName, "log-level", "info", "log level: debug, info, warn, error or fatal")

	previous := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, ok := ParseLogLevel(levelName)
		if !ok {
			return fmt.Errorf("unknown log level %q", levelName)
		}

		SetLevel(level)

		if previous != nil {
			return previous(cmd, args)
		}

		return nil
	}
}
