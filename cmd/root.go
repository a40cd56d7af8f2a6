package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	stress_cmd "github.com/opendatahub-io/dashboard-proxy/internal/stress/cmd"
)

// RootCommand creates the dashboard proxy command tree
func RootCommand() (*cobra.Command, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	root := cobra.Command{
		Use:          "dashboard-proxy",
		Short:        "dashboard API proxy to cluster services and plugins",
		SilenceUsage: true,
	}

	for name, fn := range map[string]func() (*cobra.Command, error){
		"serve":       ServeCommand,
		"stress-test": stress_cmd.Command,
	} {
		cmd, err := fn()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		root.AddCommand(cmd)
	}

	return &root, nil
}
