package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/dayplan/internal/app"
	"github.com/sadopc/dayplan/internal/config"
	"github.com/sadopc/dayplan/internal/export"
	"github.com/sadopc/dayplan/internal/logging"
	"github.com/sadopc/dayplan/internal/tasks"
	"github.com/sadopc/dayplan/internal/timer"
	"github.com/sadopc/dayplan/internal/tui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var Version = "dev"

// globalFlags are shared by every command. cfg is filled in before any
// command runs.
type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
}

func main() {
	var flags globalFlags
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:           "dayplan",
		Short:         "Work and study timers, time plans, projects and a calendar in your terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			flags.cfg = cfg
			logFile, err = logging.OpenFile(cfg.LogFile)
			if err != nil {
				return err
			}
			logging.Init(logging.Config{
				Level:  logging.ParseLevel(cfg.LogLevel),
				Output: logFile,
				Pretty: cfg.LogPretty,
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(&flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database path, overrides db_path")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(statusCmd(&flags))
	rootCmd.AddCommand(exportCmd(&flags))
	rootCmd.AddCommand(initCmd(&flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(flags globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, nil
}

func openApp(flags *globalFlags, opts ...app.Option) (*app.App, error) {
	a, err := app.Open(flags.cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logging.Info().Str("db", flags.cfg.DBPath).Msg("opened store")
	return a, nil
}

func runTUI(flags *globalFlags) error {
	a, err := openApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.NewApp(a)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C63FF"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Width(12)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
)

func statusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print timer totals and today's plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, app.ReadOnly())
			if err != nil {
				return err
			}
			defer a.Close()
			return writeStatus(cmd.OutOrStdout(), a)
		},
	}
}

func writeStatus(out io.Writer, a *app.App) error {
	fmt.Fprintln(out, headingStyle.Render("Timers"))
	for _, k := range timer.Kinds {
		line := labelStyle.Render(k.Label()) + a.Timer.FormattedTotal(k)
		if a.Timer.Running(k) {
			line += " " + runningStyle.Render("running")
		}
		fmt.Fprintln(out, "  "+line)
	}

	today := a.Plans.Today()
	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Today's plans (%d)", len(today))))
	for _, p := range today {
		fmt.Fprintln(out, "  "+labelStyle.Render(p.Kind.Label())+p.Display()+"  "+p.Title)
	}

	var open int
	projects := a.Projects.List()
	for _, p := range projects {
		if p.Status == tasks.StatusInProgress {
			open++
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render("Projects"))
	fmt.Fprintf(out, "  %s%d of %d\n", labelStyle.Render("In progress"), open, len(projects))
	fmt.Fprintf(out, "  %s%d\n", labelStyle.Render("SOP goals"), len(a.Tree.List()))
	fmt.Fprintf(out, "  %s%d\n", labelStyle.Render("Events"), len(a.Events.List()))

	keys, err := a.StoredKeys()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		fmt.Fprintf(out, "  %s%s\n", labelStyle.Render("Stored"), strings.Join(keys, ", "))
	}
	return nil
}

func exportCmd(flags *globalFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every collection and the timer totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			a, err := openApp(flags, app.ReadOnly())
			if err != nil {
				return err
			}
			defer a.Close()

			if out == "" {
				out = fmt.Sprintf("dayplan-export-%s.%s", a.Now().Format("2006-01-02"), f)
			}
			if err := a.Export(afero.NewOsFs(), f, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exported to "+out)
			return nil
		},
	}

	formats := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		formats[i] = string(f)
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default dayplan-export-DATE.FORMAT)")
	return cmd
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config %s already exists", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote "+path)
			return nil
		},
	}
}
