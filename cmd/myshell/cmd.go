package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mshell/internal/config"
	"mshell/internal/logging"
	"mshell/internal/shell"
)

var (
	configFile string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:           "myshell",
	Short:         "A small interactive shell with pipelines, redirections and background jobs",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}

		log, err := logging.New(cfg.LogFile, cfg.Debug)
		if err != nil {
			return fmt.Errorf("error opening log: %w", err)
		}

		s, err := shell.New(cfg, log)
		if err != nil {
			_ = log.Sync()
			return fmt.Errorf("error initializing shell: %w", err)
		}

		code := s.Run()
		_ = log.Sync()
		os.Exit(code)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "config.yml", "path to the YAML configuration file")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write a debug log to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(shell.ExitFailure)
	}
}
