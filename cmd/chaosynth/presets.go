package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/chaosynth/internal/engine"
	"github.com/vovakirdan/chaosynth/internal/platform/tui"
)

var flagPresetFile string

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved presets",
	Long: `List, show, save, remove and browse presets in the configured store.

Examples:
  chaosynth presets list
  chaosynth presets show ambient
  chaosynth presets save ambient --from ./ambient.json
  chaosynth presets rm ambient
  chaosynth presets browse`,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPresetsShow,
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a preset",
	Long: `Save the configured orchestrator settings as a preset, or read them from a
JSON file with --from ("-" reads stdin). The file has the shape printed by
'chaosynth presets show'.`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetsSave,
}

var presetsRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a preset",
	Args:    cobra.ExactArgs(1),
	RunE:    runPresetsRm,
}

var presetsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse presets interactively",
	Args:  cobra.NoArgs,
	RunE:  runPresetsBrowse,
}

func init() {
	presetsSaveCmd.Flags().StringVar(&flagPresetFile, "from", "", "Read the preset from a JSON file")

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsShowCmd)
	presetsCmd.AddCommand(presetsSaveCmd)
	presetsCmd.AddCommand(presetsRmCmd)
	presetsCmd.AddCommand(presetsBrowseCmd)
}

// presetEngine builds an idle engine whose only job is preset access.
func presetEngine() (*engine.Engine, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	e, _, err := setup(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	if !e.HasPresets() {
		e.Close()
		return nil, engine.ErrPresetsUnavailable
	}
	return e, nil
}

func runPresetsList(cmd *cobra.Command, args []string) error {
	e, err := presetEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	infos, err := e.PresetInfos()
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No presets saved yet.")
		fmt.Println()
		fmt.Println("Press S in 'chaosynth play' or run 'chaosynth presets save <name>'.")
		return nil
	}

	fmt.Printf("  %-24s  %-12s  %-12s  %s\n", "Name", "Chaos", "Bio", "Updated")
	fmt.Printf("  %-24s  %-12s  %-12s  %s\n", "----", "-----", "---", "-------")
	for _, info := range infos {
		chaosKind, bioKind := info.Preset.Chaos.Kind, info.Preset.Bio.Kind
		if !info.Valid {
			chaosKind, bioKind = "(invalid)", "-"
		}
		fmt.Printf("  %-24s  %-12s  %-12s  %s\n", info.Name, chaosKind, bioKind, info.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runPresetsShow(cmd *cobra.Command, args []string) error {
	e, err := presetEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.GetPreset(args[0])
	if err != nil {
		return fmt.Errorf("cannot read preset %q: %w", args[0], err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func runPresetsSave(cmd *cobra.Command, args []string) error {
	e, err := presetEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	name := args[0]
	if flagPresetFile == "" {
		if err := e.SavePreset(name); err != nil {
			return err
		}
		fmt.Printf("Saved preset %q from config.\n", name)
		return nil
	}

	var data []byte
	if flagPresetFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(flagPresetFile)
	}
	if err != nil {
		return fmt.Errorf("cannot read preset file: %w", err)
	}

	// Validate against the live orchestrators before storing.
	p := e.CurrentPreset()
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("cannot parse preset file: %w", err)
	}
	if err := e.ApplyPreset(p); err != nil {
		return err
	}
	if err := e.PutPreset(name, p); err != nil {
		return err
	}
	fmt.Printf("Saved preset %q from %s.\n", name, flagPresetFile)
	return nil
}

func runPresetsRm(cmd *cobra.Command, args []string) error {
	e, err := presetEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.DeletePreset(args[0]); err != nil {
		return fmt.Errorf("cannot remove preset %q: %w", args[0], err)
	}
	fmt.Printf("Removed preset %q.\n", args[0])
	return nil
}

func runPresetsBrowse(cmd *cobra.Command, args []string) error {
	e, err := presetEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	_, err = tui.RunPresetBrowser(e, tui.DefaultTheme(), width, height)
	return err
}
