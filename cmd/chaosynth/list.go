package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chaosynth/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all generator kinds",
	Long:  `Shows every chaotic system and biological model chaosynth can play.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	for _, family := range []registry.Family{registry.FamilyChaos, registry.FamilyBio} {
		kinds := registry.List(family)
		if len(kinds) == 0 {
			continue
		}

		fmt.Printf("%s:\n", family)

		// Calculate column widths
		maxIDLen := 2 // "ID" header
		for _, k := range kinds {
			if len(k.ID) > maxIDLen {
				maxIDLen = len(k.ID)
			}
		}

		fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "DESCRIPTION")
		for _, k := range kinds {
			fmt.Printf("  %-*s  %s - %s\n", maxIDLen, k.ID, k.Title, k.Description)
		}
		fmt.Println()
	}

	fmt.Println("Use 'chaosynth play' and the arrow keys to switch kinds live.")
}
