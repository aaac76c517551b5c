package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/h1bcount/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set h1bcount configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "top: %d\n", c.Top)
		fmt.Fprintf(out, "verbose: %t\n", c.Verbose)
		fmt.Fprintf(out, "delimiter: %s\n", c.Delimiter)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		if c.LogFile != "" {
			fmt.Fprintf(out, "log_file: %s\n", c.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "top":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid top: %v (must be an integer >= 1)", val)
			}
			c.Top = i
		case "verbose":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for verbose: %w", err)
			}
			c.Verbose = b
		case "delimiter":
			c.Delimiter = val
		case "output_dir":
			c.OutputDir = val
		case "log_level":
			c.LogLevel = val
		case "log_file":
			c.LogFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
