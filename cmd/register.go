package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calimport/internal/event"
	"github.com/teemow/calimport/internal/importer"
	"github.com/teemow/calimport/internal/register"
	"github.com/teemow/calimport/internal/sheet"
)

type registerOptions struct {
	account    string
	calendarID string
	sheets     []string
	records    string
	describe   []string
	allDay     bool
	private    bool
	dryRun     bool
	csvOut     string
	icsOut     string
}

func newRegisterCmd() *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register [files...]",
		Short: "Merge spreadsheets and register one calendar event per work item",
		Long: `Load every given .xlsx/.csv file and Google Sheets range, merge them on the
management number (管理番号) and create one calendar event per merged row.

The event title is the cleaned management number followed by the item name.
Rows without a start or end date are dropped. Columns passed with --describe
are rendered into the event description in the given order.

Use --dry-run to only build the events, and --csv-out or --ics-out to save
them. A CSV written with --csv-out can be registered later with --records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.account, "account", "default", "Google account name to use")
	f.StringVar(&opts.calendarID, "calendar", "", "Target calendar ID (default: register.calendarid)")
	f.StringArrayVar(&opts.sheets, "sheet", nil, "Google Sheets source as spreadsheetId!range (repeatable)")
	f.StringVar(&opts.records, "records", "", "Register events from a CSV written by --csv-out (management numbers included) instead of merging sources")
	f.StringSliceVar(&opts.describe, "describe", nil, "Columns rendered into the description (default: register.descriptioncolumns)")
	f.BoolVar(&opts.allDay, "all-day", false, "Create all-day events (default: register.allday)")
	f.BoolVar(&opts.private, "private", true, "Create private events that do not block availability (default: register.private)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Build the events but do not write to the calendar")
	f.StringVar(&opts.csvOut, "csv-out", "", "Write the built events to this CSV file")
	f.StringVar(&opts.icsOut, "ics-out", "", "Write the built events to this iCalendar file")

	return cmd
}

func runRegister(cmd *cobra.Command, files []string, opts registerOptions) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeApp(a)

	if !cmd.Flags().Changed("describe") {
		opts.describe = a.cfg.Register.DescriptionColumns
	}
	if !cmd.Flags().Changed("all-day") {
		opts.allDay = a.cfg.Register.AllDay
	}
	if !cmd.Flags().Changed("private") {
		opts.private = a.cfg.Register.Private
	}
	if opts.calendarID == "" {
		opts.calendarID = a.cfg.Register.CalendarID
	}

	records, err := buildRecords(ctx, a, files, opts, out)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No events to register.")
		return nil
	}

	if err := exportRecords(records, opts); err != nil {
		return err
	}

	if opts.dryRun {
		_, _ = boldColor.Fprintf(out, "Dry run: %d event(s) would be registered in %s\n\n", len(records), opts.calendarID)
		return printRecords(out, records)
	}

	client, err := a.calendarClient(ctx, opts.account)
	if err != nil {
		return err
	}

	report := register.NewRegistrar(client, a.logger, register.Options{
		Account: opts.account,
		Metrics: a.metrics(),
		Audit:   a.auditLogger(),
	}).Register(ctx, opts.calendarID, records, progressPrinter(out))

	printTotals(out, "Registered", report.Successful, report.Total, report.Failed)
	fmt.Fprintf(out, "Run ID: %s\n", report.RunID)
	if report.Failed > 0 {
		return fmt.Errorf("%d event(s) could not be registered", report.Failed)
	}
	return ctx.Err()
}

// buildRecords produces the records either from an intermediate CSV or by
// merging the spreadsheet sources.
func buildRecords(ctx context.Context, a *app, files []string, opts registerOptions, out io.Writer) ([]event.Record, error) {
	if opts.records != "" {
		if len(files) > 0 || len(opts.sheets) > 0 {
			return nil, fmt.Errorf("--records cannot be combined with spreadsheet sources")
		}
		f, err := os.Open(opts.records)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return event.ReadCSV(f, a.loc)
	}

	if len(files) == 0 && len(opts.sheets) == 0 {
		return nil, fmt.Errorf("no sources given: pass files or --sheet")
	}

	var loader *sheet.SheetsLoader
	if len(opts.sheets) > 0 {
		var err error
		loader, err = a.sheetsLoader(ctx, opts.account)
		if err != nil {
			return nil, err
		}
	}
	sources, err := importer.Sources(files, opts.sheets, loader)
	if err != nil {
		return nil, err
	}

	res, err := importer.Run(ctx, sources, importer.Options{
		KeyPrefix:    a.cfg.KeyPrefix,
		RegionPrefix: a.cfg.RegionPrefix,
		Location:     a.loc,
		Metrics:      a.metrics(),
		Event: event.Options{
			DescriptionColumns: opts.describe,
			AllDay:             opts.allDay,
			Private:            opts.private,
		},
	}, a.logger)
	printWarnings(out, res.Warnings())
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func exportRecords(records []event.Record, opts registerOptions) error {
	if opts.csvOut != "" {
		if err := writeFile(opts.csvOut, func(w io.Writer) error {
			return event.WriteCSV(w, records)
		}); err != nil {
			return err
		}
	}
	if opts.icsOut != "" {
		if err := writeFile(opts.icsOut, func(w io.Writer) error {
			return event.WriteICS(w, records, time.Now())
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printRecords(w io.Writer, records []event.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBJECT\tSTART\tEND\tLOCATION")
	for _, r := range records {
		layout := "2006-01-02 15:04"
		if r.AllDay {
			layout = time.DateOnly
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Subject, r.Start.Format(layout), r.End.Format(layout), r.Location)
	}
	return tw.Flush()
}
