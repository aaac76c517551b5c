package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/h1bcount/internal/analysis"
	cfgpkg "github.com/KaramelBytes/h1bcount/internal/config"
	"github.com/KaramelBytes/h1bcount/internal/logging"
	"github.com/KaramelBytes/h1bcount/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Report flags (override config if set)
	flagTop       int
	flagVerbose   bool
	flagDelimiter string
	flagOutputDir string
)

var rootCmd = &cobra.Command{
	Use:   "h1bcount <input.csv> <occupations.txt> <states.txt>",
	Short: "Rank occupations and states by certified visa petitions",
	Long: `h1bcount reads a ';'-delimited petition file, counts petitions and certified
petitions per occupation and per work-location state, and writes the top entries
of each ranking to the two given files.`,
	Example:       "  h1bcount ./input/h1b_input.csv ./output/top_10_occupations.txt ./output/top_10_states.txt",
	Args:          countArgs,
	RunE:          runCount,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.h1bcount/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&flagTop, "top", analysis.DefaultTop, "number of ranked entries per report, at least 1 (overrides config)")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "echo reports to stdout (overrides config)")
	rootCmd.Flags().StringVar(&flagDelimiter, "delimiter", ";", "field delimiter for input and reports (overrides config)")
	rootCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for reports written without an explicit path (overrides config)")
}

func countArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected 3 arguments, got %d\nUsage: %s", len(args), cmd.UseLine())
	}
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	input, occupationsOut, statesOut := args[0], args[1], args[2]
	if err := utils.RequireFile(input); err != nil {
		return fmt.Errorf("you must supply a data file: %w\nUsage: %s", err, cmd.UseLine())
	}
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, closeLog, err := logging.New(logging.Options{
		Level: c.LogLevel,
		Debug: debug,
		File:  c.LogFile,
		Out:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closeLog()

	census := analysis.NewCensus(
		analysis.WithDelimiter(c.DelimiterRune()),
		analysis.WithLogger(log),
	)
	if err := census.Load(input); err != nil {
		return err
	}
	if err := census.Aggregate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opt := analysis.ReportOptions{
		Top:       c.Top,
		Verbose:   c.Verbose,
		Out:       out,
		OutputDir: c.OutputDir,
	}
	occPath, statesPath, err := census.WriteTopReports(opt, occupationsOut, statesOut)
	if err != nil {
		return err
	}
	if c.Verbose {
		fmt.Fprintf(out, "✓ Wrote top occupations to %s\n", occPath)
		fmt.Fprintf(out, "✓ Wrote top states to %s\n", statesPath)
	}
	return nil
}

// loadConfig reads the config file and environment, then applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*cfgpkg.Global, error) {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("top") {
		c.Top = flagTop
	}
	if f.Changed("verbose") {
		c.Verbose = flagVerbose
	}
	if f.Changed("delimiter") {
		c.Delimiter = flagDelimiter
	}
	if f.Changed("output-dir") {
		c.OutputDir = flagOutputDir
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}
