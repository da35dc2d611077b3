package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vaseyai/reprompter/internal/catalog"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List target models and modes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		cat, err := catalog.FromConfig(cfg.Models)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tPROVIDER\tNAME")
		for _, id := range cat.ModelIDs() {
			m, _ := cat.Model(id)
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Provider, m.DisplayName)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "MODE\tNAME\t")
		for _, m := range cat.Modes() {
			fmt.Fprintf(w, "%s\t%s\t\n", m.Mode, m.Name)
		}
		return w.Flush()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
