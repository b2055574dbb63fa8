package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanban-tech/vanban/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration as YAML. Without a path the file
is written to ./vanban.yaml. Existing files are never overwritten.`,
	// Init must work before any configuration exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Args:              cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefaultFile(path); err != nil {
			return err
		}
		if path == "" {
			path = config.ConfigFileName + ".yaml"
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Đã tạo tệp cấu hình: %s\n", path)
		return err
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		loader := config.NewLoader()
		if file := loader.ConfigFileUsed(); file != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", file)
		}
		return printYAML(cmd, cfg)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
