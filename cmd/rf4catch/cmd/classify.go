package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// classifyCmd runs the field classifier on literal text.
var classifyCmd = &cobra.Command{
	Use:   "classify TEXT...",
	Short: "Classify text lines into catch record fields",
	Long: `Print the field and value each argument would contribute to a catch
record, one "field<TAB>value" line per argument.

Examples:
  rf4catch classify 42分-97% 镜鲤 3705克 2.59`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runClassifyCommand,
}

func runClassifyCommand(cmd *cobra.Command, args []string) error {
	cfg := *GetConfig()
	if cmd.Flags().Changed("fish-catalog") {
		cfg.Extract.FishCatalog, _ = cmd.Flags().GetString("fish-catalog")
	}
	if cmd.Flags().Changed("fish-names") {
		cfg.Extract.FishNames, _ = cmd.Flags().GetStringSlice("fish-names")
	}

	ex, err := newExtractor(&cfg)
	if err != nil {
		return err
	}
	for _, text := range args {
		name, value := ex.Classify(text)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, value)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().String("fish-catalog", "", "JSON or YAML fish catalog extending the fish name whitelist")
	classifyCmd.Flags().StringSlice("fish-names", nil, "fish name whitelist (replaces the configured list)")
}
