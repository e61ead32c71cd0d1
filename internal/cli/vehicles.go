package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var vehiclesCmd = &cobra.Command{
	Use:     "vehicles",
	Aliases: []string{"ls"},
	Short:   "List the vehicles on your account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		s, err := login(ctx)
		if err != nil {
			return err
		}
		vehicles, err := s.client.ListVehicles(ctx, s.token)
		if err != nil {
			return fmt.Errorf("failed to list vehicles: %w", err)
		}

		if len(vehicles) == 0 {
			fmt.Println(styleHint.Render("No vehicles on this account."))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, styleLabel.Render("KEY")+"\t"+styleLabel.Render("VEHICLE"))
		for _, v := range vehicles {
			fmt.Fprintf(w, "%s\t%s\n", v.Key, v.Label())
		}
		return w.Flush()
	},
}
