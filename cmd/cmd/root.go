package cmd

import (
	"github.com/ostafen/rz4/internal/env"
	"github.com/spf13/cobra"
)

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - find and carve embedded audio streams",
	}

	rootCmd.PersistentFlags().String("log-file", "", "write a detailed session log to the specified file")
	rootCmd.PersistentFlags().String("log-level", "INFO", "minimum level of logged messages (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(
		DefineScanCommand(),
		DefineCompressCommand(),
		DefineExtractCommand(),
		DefineFormatsCommand(),
		DefineMountCommand(),
	)
	return rootCmd.Execute()
}
