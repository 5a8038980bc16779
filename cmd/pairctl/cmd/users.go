package cmd

import (
	"fmt"

	"github.com/pairtrack/pairtrack/internal/app"
	"github.com/spf13/cobra"
)

func UsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users and change roles",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every user with their role",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			profiles, err := a.MemberService.All()
			if err != nil {
				return err
			}

			tw := table(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tROLE")
			for _, p := range profiles {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.DisplayName(), p.Role)
			}
			return tw.Flush()
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "role USER_ID ROLE",
		Short: "Set a user's role (admin or member)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			// The CLI acts as no particular user, so self-demotion does not apply.
			err := a.MemberService.SetRole("", args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
			return err
		}),
	})

	return cmd
}
