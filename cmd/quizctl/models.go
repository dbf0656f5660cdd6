package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"smartstudy/internal/domain"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models in fallback order",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, _, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer services.Close()
		return printModels(cmd.OutOrStdout(), services.Registry.Models())
	},
}

func printModels(w io.Writer, models []domain.ModelDescriptor) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tNAME\tKIND\tMAX TOKENS")
	for _, m := range models {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", m.Priority, m.Name, m.Kind, m.MaxOutputTokens)
	}
	return tw.Flush()
}
