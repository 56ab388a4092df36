package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var opts loadOptions

	rootCmd := &cobra.Command{
		Use:           "whispersrt",
		Short:         "Transcribe audio into SubRip subtitles",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file")

	rootCmd.AddCommand(newServeCommand(&opts))
	rootCmd.AddCommand(newConvertCommand(&opts))
	rootCmd.AddCommand(newRenderCommand(&opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
