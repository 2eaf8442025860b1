package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chaosynth/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration",
	Long: `Print the resolved configuration as YAML, after the search order and
global flag overrides are applied.

With --defaults the embedded default file is printed verbatim, comments
included, as a starting point for ~/.chaosynth/config.yaml.

Examples:
  chaosynth config
  chaosynth config --defaults > ~/.chaosynth/config.yaml`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the embedded default config file")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if flagConfigDefaults {
		_, err := out.Write(config.DefaultYAML())
		return err
	}

	cfg, src, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	fmt.Fprintf(out, "# source: %s\n", src)
	_, err = out.Write(data)
	return err
}
