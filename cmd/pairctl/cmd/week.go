package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/pairtrack/pairtrack/internal/app"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/spf13/cobra"
)

func WeekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Inspect and move the weekly cycle",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active week and recent history",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			out := cmd.OutOrStdout()

			active, err := a.CycleService.Active()
			switch {
			case errors.Is(err, service.ErrNoActiveCycle):
				fmt.Fprintln(out, "no active week")
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "active: %s (%s)\n", active.Label(), active.ID)
			}

			history, err := a.CycleService.History(10)
			if err != nil {
				return err
			}
			tw := table(out)
			fmt.Fprintln(tw, "ID\tWEEK\tSTATUS")
			for _, c := range history {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Label(), c.Status)
			}
			return tw.Flush()
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Make the current calendar week the active week",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			cycle, err := a.CycleService.ResetToCurrentWeek()
			if err != nil {
				return err
			}
			return printCycle(cmd, "reset to", cycle)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Close the active week and start the next one",
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			cycle, err := a.CycleService.StartNewWeek(cmd.Context())
			if err != nil {
				return err
			}
			return printCycle(cmd, "started", cycle)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "range START END",
		Short: "Set the active week to an explicit date range (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			start, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}
			end, err := time.Parse(time.DateOnly, args[1])
			if err != nil {
				return fmt.Errorf("invalid end date: %w", err)
			}

			cycle, err := a.CycleService.SetManualRange(start, end)
			if err != nil {
				return err
			}
			return printCycle(cmd, "set range", cycle)
		}),
	})

	return cmd
}

func printCycle(cmd *cobra.Command, verb string, cycle *model.WeeklyCycle) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, cycle.Label(), cycle.ID)
	return err
}
