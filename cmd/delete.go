package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/calendar"
	"github.com/teemow/calimport/internal/deletion"
)

type deleteOptions struct {
	account    string
	calendarID string
	from       string
	to         string
	keyword    string
	yes        bool
}

func newDeleteCmd() *cobra.Command {
	var opts deleteOptions

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the events of a date range",
		Long: `Delete every event of a calendar from the start of --from through the end
of --to (both YYYY-MM-DD, in the configured time zone). With --keyword only
events whose title contains the keyword are deleted.

The matching events are listed first and deleted after confirmation. If
listing fails nothing is deleted. A failed delete does not stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.account, "account", "default", "Google account name to use")
	f.StringVar(&opts.calendarID, "calendar", "", "Calendar ID (default: register.calendarid)")
	f.StringVar(&opts.from, "from", "", "First day of the range (YYYY-MM-DD)")
	f.StringVar(&opts.to, "to", "", "Last day of the range, inclusive (YYYY-MM-DD)")
	f.StringVar(&opts.keyword, "keyword", "", "Only delete events whose title contains this text")
	f.BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking for confirmation")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runDelete(cmd *cobra.Command, opts deleteOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeApp(a)

	if opts.calendarID == "" {
		opts.calendarID = a.cfg.Register.CalendarID
	}
	w, err := deletion.ParseWindow(opts.calendarID, opts.from, opts.to, a.loc, opts.keyword)
	if err != nil {
		return err
	}

	client, err := a.calendarClient(ctx, opts.account)
	if err != nil {
		return err
	}
	d := deletion.NewDeleter(client, a.logger, deletion.Options{
		Account: opts.account,
		Metrics: a.metrics(),
		Audit:   a.auditLogger(),
	})

	plan, err := d.Collect(ctx, w)
	if err != nil {
		return err
	}
	if len(plan.Events) == 0 {
		fmt.Fprintln(out, "No matching events.")
		return nil
	}

	_, _ = boldColor.Fprintf(out, "%d event(s) in %s between %s and %s:\n\n", len(plan.Events), w.CalendarID,
		w.From.Format(deletion.DateLayout), w.To.Format(deletion.DateLayout))
	if err := printEvents(out, plan.Events, a.loc); err != nil {
		return err
	}
	fmt.Fprintln(out)

	if !opts.yes {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete these %d event(s)?", len(plan.Events)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	summary := d.DeleteEvents(ctx, plan, progressPrinter(out))
	printTotals(out, "Deleted", summary.Deleted, summary.Matched, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d event(s) could not be deleted", summary.Failed)
	}
	return ctx.Err()
}

// confirm asks a y/N question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = warnColor.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func printEvents(w io.Writer, events []calendar.EventSummary, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tSUMMARY\tID")
	for _, ev := range events {
		start := ev.Start.In(loc).Format("2006-01-02 15:04")
		if ev.AllDay {
			start = ev.Start.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", start, ev.Summary, ev.ID)
	}
	return tw.Flush()
}
