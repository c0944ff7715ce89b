package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/basher83/zammad-mcp/internal/output"
)

// Execute runs the root command and maps errors to exit codes from
// the error taxonomy.
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		var oe *output.Error
		if errors.As(err, &oe) {
			fmt.Fprintf(os.Stderr, "error: %s\n", oe.Message)
			if oe.Hint != "" {
				fmt.Fprintf(os.Stderr, "hint: %s\n", oe.Hint)
			}
			os.Exit(oe.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
