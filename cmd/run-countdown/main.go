package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ensigniasec/run-countdown/internal/console"
	"github.com/ensigniasec/run-countdown/internal/countdown"
	"github.com/ensigniasec/run-countdown/internal/definition"
	"github.com/ensigniasec/run-countdown/internal/storage"
	"github.com/ensigniasec/run-countdown/internal/tui"
	"github.com/ensigniasec/run-countdown/internal/validate"
)

//nolint:gochecknoglobals // Cobra requires package-level vars for flag bindings in current structure.
var (
	// Version metadata populated at build time via -ldflags.
	releaseVersion = "dev"
	commit         = "none"
	date           = "unknown"

	// Used for flags.
	storageFile = storage.DefaultPath
	verbose     bool
	jsonOutput  bool
	tuiMode     bool
	deadlineArg string
	startArg    string
	inArg       time.Duration
	fileArg     string
	onExpireArg string
	nameArg     string

	rootCmd = &cobra.Command{
		Use:   "run-countdown",
		Short: "A terminal countdown that escalates from info to warning to error as a deadline approaches.",
		Long:  `This tool counts down to a deadline once per second, shows the elapsed share of the window, and escalates its severity at 50% and 80%. When the deadline passes it reloads its source and starts over, or exits.`,
	}
)

var errNoDeadline = errors.New("no deadline: pass --deadline, --in or --file, or run `session set`")

//nolint:gochecknoinits // Cobra command wiring performed in init in current structure.
func init() {
	// Route logs to stderr to avoid polluting stdout, especially for --json output.
	logrus.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable detailed logging output")
	rootCmd.PersistentFlags().
		StringVar(&storageFile, "storage-file", storage.DefaultPath, "Path of the session file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	}

	runCmd.Flags().StringVar(&deadlineArg, "deadline", "", "Deadline to count down to (ISO 8601 or any common date format)")
	runCmd.Flags().StringVar(&startArg, "start", "", "Optional: start of the window, enables the elapsed percentage")
	runCmd.Flags().
		DurationVar(&inArg, "in", 0, "Count down this long from now; every reload starts a fresh window")
	runCmd.Flags().StringVarP(&fileArg, "file", "f", "", "Countdown definition file (JSON or YAML)")
	runCmd.Flags().BoolVar(&tuiMode, "tui", false, "Enable interactive TUI mode")
	runCmd.Flags().
		StringVar(&onExpireArg, "on-expire", "", "What to do when the deadline passes: reload or exit")
	runCmd.MarkFlagsMutuallyExclusive("deadline", "in", "file")

	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format instead of rich text")

	sessionSetCmd.Flags().StringVar(&deadlineArg, "deadline", "", "Deadline to store")
	sessionSetCmd.Flags().StringVar(&startArg, "start", "", "Optional: start of the window")
	sessionSetCmd.Flags().StringVar(&nameArg, "name", "", "Optional: label shown with the countdown")
	_ = sessionSetCmd.MarkFlagRequired("deadline")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionCmd)

	// Wire up session subcommands.
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionShowCmd)

	// Built-in version flag: set version string and a custom template.
	rootCmd.Version = releaseVersion
	rootCmd.Annotations = map[string]string{"commit": commit, "date": date}
	rootCmd.SetVersionTemplate("{{printf \"%s %s\\ncommit: %s\\ndate: %s\\n\" .DisplayName .Version (index .Annotations \"commit\") (index .Annotations \"date\")}}")
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		logrus.Fatal(err)
	}
}

// countdownSource picks where the window comes from: a definition file, the
// --deadline/--in flags, or the session file.
func countdownSource() (string, countdown.Source, bool, error) {
	exitOnExpire := onExpireArg == definition.OnExpireExit

	switch {
	case fileArg != "":
		def, err := definition.Load(fileArg)
		if err != nil {
			return "", nil, false, err
		}
		if onExpireArg == "" {
			exitOnExpire = def.ExitOnExpire()
		}
		return def.Name, def.Source(), exitOnExpire, nil

	case inArg > 0:
		in := inArg
		return "in " + in.String(), func() (countdown.Window, error) {
			now := time.Now()
			return countdown.Window{
				Deadline: countdown.At(now.Add(in)),
				Start:    countdown.At(now),
			}, nil
		}, exitOnExpire, nil

	case deadlineArg != "":
		w := countdown.Window{Deadline: countdown.Parse(deadlineArg), Start: countdown.Parse(startArg)}
		if !w.Deadline.Valid() {
			return "", nil, false, fmt.Errorf("invalid deadline %q", deadlineArg)
		}
		return "countdown", func() (countdown.Window, error) { return w, nil }, exitOnExpire, nil
	}

	st, err := storage.NewStorage(storageFile)
	if err != nil {
		return "", nil, false, err
	}
	if st.Data.Deadline == "" {
		return "", nil, false, errNoDeadline
	}
	name := st.Data.Name
	if name == "" {
		name = "session"
	}
	return name, st.Source(), exitOnExpire, nil
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Count down to a deadline. [Defaults to the stored session]",
	Long:  "Count down to a deadline given by --file, --deadline or --in, falling back to the deadline stored with `session set`. When the deadline passes the source is read again and the countdown restarts, unless --on-expire exit is set.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if onExpireArg != "" {
			if err := validate.Var(onExpireArg, "oneof=reload exit"); err != nil {
				logrus.Fatalf("Invalid --on-expire %q. Expected reload or exit.", onExpireArg)
			}
		}
		if tuiMode && !verbose {
			logrus.SetLevel(logrus.WarnLevel)
		}

		name, src, exitOnExpire, err := countdownSource()
		if err != nil {
			logrus.Fatal(err)
		}
		log := logrus.WithField("countdown", name)

		var reloads int
		if tuiMode {
			reloads, err = tui.Run(cmd.Context(), tui.Options{
				Title:        name,
				Source:       src,
				ExitOnExpire: exitOnExpire,
				Log:          log,
			})
			if err != nil {
				logrus.Fatalf("TUI mode failed: %v", err)
			}
		} else {
			reloads, err = console.Run(cmd.Context(), os.Stdout, src, console.Options{
				ExitOnExpire: exitOnExpire,
				Log:          log,
			})
			if err != nil {
				logrus.Fatal(err)
			}
		}
		log.WithField("reloads", reloads).Debug("countdown finished")
	},
}

// statusEntry is one row of `status` output. Percent is nil when it is not a
// finite number, which JSON cannot carry.
type statusEntry struct {
	Name     string   `json:"name"`
	Path     string   `json:"path,omitempty"`
	Deadline string   `json:"deadline"`
	Start    string   `json:"start,omitempty"`
	Text     string   `json:"remaining"`
	Percent  *float64 `json:"percent"`
	Severity string   `json:"severity"`
	HasTime  bool     `json:"has_time"`
	Error    string   `json:"error,omitempty"`
}

func newStatusEntry(name, path string, w countdown.Window, now time.Time) statusEntry {
	text, percent := countdown.FormatTimer(now, w.Deadline, w.Start)
	e := statusEntry{
		Name:     name,
		Path:     path,
		Deadline: w.Deadline.String(),
		Start:    w.Start.String(),
		Text:     text,
		Severity: countdown.Classify(percent).Class(),
		HasTime:  countdown.HasTime(now, w.Deadline),
	}
	if !math.IsNaN(percent) && !math.IsInf(percent, 0) {
		e.Percent = &percent
	}
	return e
}

func collectStatus(ctx context.Context, targets []string, now time.Time) ([]statusEntry, error) {
	if len(targets) == 0 {
		st, err := storage.NewStorage(storageFile)
		if err != nil {
			return nil, err
		}
		if st.Data.Deadline == "" {
			return nil, errNoDeadline
		}
		name := st.Data.Name
		if name == "" {
			name = "session"
		}
		return []statusEntry{newStatusEntry(name, st.Path, st.Window(), now)}, nil
	}

	paths, err := definition.Resolve(ctx, targets)
	if err != nil {
		return nil, err
	}
	entries := make([]statusEntry, 0, len(paths))
	for _, p := range paths {
		def, err := definition.Load(p)
		if err != nil {
			logrus.Warnf("Skipping %s: %v", p, err)
			entries = append(entries, statusEntry{Path: p, Error: err.Error()})
			continue
		}
		entries = append(entries, newStatusEntry(def.Name, p, def.Window(), now))
	}
	return entries, nil
}

func printStatus(w io.Writer, entries []statusEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	fmt.Fprintln(tw, "NAME\tREMAINING\tELAPSED\tSEVERITY")
	for _, e := range entries {
		if e.Error != "" {
			fmt.Fprintf(tw, "%s\terror\t-\t%s\n", e.Path, e.Error)
			continue
		}
		elapsed := "-"
		if e.Percent != nil && e.Start != "" {
			elapsed = fmt.Sprintf("%.1f%%", *e.Percent)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Text, elapsed, console.SeverityStyle(severityOf(e.Severity)).Render(e.Severity))
	}
	_ = tw.Flush()
}

func severityOf(class string) countdown.Severity {
	for _, s := range []countdown.Severity{countdown.Error, countdown.Warning} {
		if s.Class() == class {
			return s
		}
	}
	return countdown.Info
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var statusCmd = &cobra.Command{
	Use:   "status [PATH...]",
	Short: "Show the remaining time of the session or of countdown definition files",
	Long:  "Evaluate countdowns once and print the remaining time, elapsed percentage and severity. Paths may be definition files or directories, which are searched for *.countdown.{json,yaml,yml} files. Without paths the stored session is shown.",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := collectStatus(cmd.Context(), args, time.Now())
		if err != nil {
			logrus.Fatal(err)
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(entries); err != nil {
				logrus.Fatal(err)
			}
			return
		}
		printStatus(os.Stdout, entries)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the stored session deadline",
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var sessionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a deadline (and optional start) for `run` and `status`",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := validate.Var(deadlineArg, "required,"+validate.DatetimeLikeTag); err != nil {
			logrus.Fatalf("Invalid deadline: %q. Expected a date such as 2026-01-02T15:04:05Z.", deadlineArg)
		}
		if err := validate.Var(startArg, "omitempty,"+validate.DatetimeLikeTag); err != nil {
			logrus.Fatalf("Invalid start: %q. Expected a date such as 2026-01-02T15:04:05Z.", startArg)
		}
		s, err := storage.NewOrExistingStorage(storageFile)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := s.SetWindow(nameArg, deadlineArg, startArg); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintf(os.Stdout, "Deadline set to %s\n", s.Window().Deadline)
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the stored deadline",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := storage.NewOrExistingStorage(storageFile)
		if err != nil {
			logrus.Fatal(err)
		}
		if err := s.Clear(); err != nil {
			logrus.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, "Deadline cleared")
	},
}

//nolint:gochecknoglobals // Cobra command is defined at package scope in current structure.
var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored deadline (if any)",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := storage.NewOrExistingStorage(storageFile)
		if err != nil {
			logrus.Fatal(err)
		}
		if s.Data.Deadline == "" {
			fmt.Fprintln(os.Stdout, "No deadline set")
			return
		}
		w := s.Window()
		fmt.Fprintf(os.Stdout, "session: %s\n", s.Data.SessionID)
		if s.Data.Name != "" {
			fmt.Fprintf(os.Stdout, "name: %s\n", s.Data.Name)
		}
		fmt.Fprintf(os.Stdout, "deadline: %s\n", w.Deadline)
		if w.Start.IsSet() {
			fmt.Fprintf(os.Stdout, "start: %s\n", w.Start)
		}
	},
}

func main() {
	Execute()
}
