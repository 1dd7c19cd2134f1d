package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/calendar"
)

func newCalendarsCmd() *cobra.Command {
	var (
		account string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List the calendars events can be registered in",
		Long: `List the calendars of the account. Read-only calendars and calendars whose
ID contains one of calendars.exclude (holiday calendars by default) are hidden
unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeApp(a)

			client, err := a.calendarClient(ctx, account)
			if err != nil {
				return err
			}
			cals, err := client.ListCalendars(ctx)
			if err != nil {
				return err
			}
			if !all {
				cals = calendar.WritableCalendars(cals, a.cfg.Calendars.Exclude)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSUMMARY\tROLE\tTIME ZONE")
			for _, c := range cals {
				id := c.ID
				if c.Primary {
					id = boldColor.Sprint(id)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id, c.Summary, c.AccessRole, c.TimeZone)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().BoolVar(&all, "all", false, "Include read-only and excluded calendars")
	return cmd
}
