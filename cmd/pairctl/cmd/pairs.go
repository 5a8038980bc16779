package cmd

import (
	"fmt"
	"strings"

	"github.com/pairtrack/pairtrack/internal/app"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/spf13/cobra"
)

func PairsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Manage pairs for the active week",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pairs and unpaired members",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			overview, err := a.PairingService.Overview()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if overview.Cycle != nil {
				fmt.Fprintf(out, "week %s\n\n", overview.Cycle.Label())
			}
			tw := table(out)
			fmt.Fprintln(tw, "PAIR\tMEMBERS")
			for _, p := range overview.Pairs {
				fmt.Fprintf(tw, "%s\t%s\n", p.ID, memberNames(p))
			}
			err = tw.Flush()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n%d unpaired\n", len(overview.Unpaired))
			for _, m := range overview.Unpaired {
				fmt.Fprintf(out, "  %s  %s\n", m.ID, m.DisplayName())
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "auto",
		Short: "Replace this week's pairs with a fresh random pairing",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			result, err := a.PairingService.AutoPair()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %d pairs\n", len(result.Pairs))
			for _, p := range result.Pairs {
				fmt.Fprintf(out, "  %s  %s\n", p.ID, memberNames(p))
			}
			for _, m := range result.Unpaired {
				fmt.Fprintf(out, "left unpaired: %s\n", m.DisplayName())
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "manual USER_A USER_B",
		Short: "Pair two members by user id",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			pair, err := a.PairingService.ManualPair(args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "paired %s (%s)\n", memberNames(*pair), pair.ID)
			return err
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove PAIR_ID",
		Short: "Remove a pair",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			err := a.PairingService.RemovePair(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return err
		}),
	})

	return cmd
}

func memberNames(p model.PairWithMembers) string {
	names := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		names = append(names, m.DisplayName())
	}
	return strings.Join(names, " & ")
}
