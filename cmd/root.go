// Package cmd wires the CLI: flag parsing, config merge, data loading, and
// the split between one-shot formatted output and the interactive TUI.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	celhelper "github.com/oakwood-commons/csvx/internal/cel"
	"github.com/oakwood-commons/csvx/internal/config"
	"github.com/oakwood-commons/csvx/internal/dataset"
	"github.com/oakwood-commons/csvx/internal/engine"
	"github.com/oakwood-commons/csvx/internal/formatter"
	"github.com/oakwood-commons/csvx/internal/limiter"
	"github.com/oakwood-commons/csvx/internal/ui"
	"github.com/oakwood-commons/csvx/pkg/logger"
	"github.com/oakwood-commons/csvx/pkg/settings"
)

// errNoInput signals that neither a file argument nor piped stdin was given.
var errNoInput = errors.New("no input provided")

var (
	interactive   bool
	outputFormat  string
	searchTerm    string
	whereExpr     string
	themeName     string
	configFile    string
	keymapName    string
	noColor       bool
	outWidth      int
	pageSizeFlag  int
	logVerbosity  int
	limitRecords  int
	offsetRecords int
	tailRecords   int

	sortFlag sortSpecValue
)

// Test seams, swapped out in root_test.go.
var (
	stdinIsPiped = func() bool {
		stat, _ := os.Stdin.Stat()
		return (stat.Mode() & os.ModeCharDevice) == 0
	}
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	termGetSize      = term.GetSize
	runProgram       = func(m *ui.Model) error {
		_, err := tea.NewProgram(m).Run()
		return err
	}
)

// sortSpecValue is a pflag.Value for --sort accepting "column",
// "column:asc", or "column:desc".
type sortSpecValue struct {
	spec *engine.SortSpec
}

var _ pflag.Value = (*sortSpecValue)(nil)

func (v *sortSpecValue) String() string {
	if v.spec == nil {
		return ""
	}
	return v.spec.Column + ":" + v.spec.Direction.String()
}

func (v *sortSpecValue) Set(s string) error {
	col := s
	dir := engine.Ascending
	if i := strings.LastIndex(s, ":"); i >= 0 {
		col = s[:i]
		switch strings.ToLower(s[i+1:]) {
		case "asc", "ascending":
			dir = engine.Ascending
		case "desc", "descending":
			dir = engine.Descending
		default:
			return fmt.Errorf("invalid sort direction %q (want asc or desc)", s[i+1:])
		}
	}
	col = strings.TrimSpace(col)
	if col == "" {
		return errors.New("sort column must not be empty")
	}
	v.spec = &engine.SortSpec{Column: col, Direction: dir}
	return nil
}

func (v *sortSpecValue) Type() string { return "column[:asc|desc]" }

// isCSVFile checks the file extension, case-insensitively.
func isCSVFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".csv"
}

// detectTerminalWidth probes stdout, then stderr, for a usable width.
func detectTerminalWidth() int {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if w, _, err := termGetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

// loadInput reads the CSV text from the file argument or piped stdin. The
// returned reload func is nil for stdin input.
func loadInput(args []string) (text, name string, reload func() (dataset.Dataset, error), err error) {
	if len(args) == 0 {
		if !stdinIsPiped() {
			return "", "", nil, errNoInput
		}
		data, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", "", nil, fmt.Errorf("read stdin: %w", rerr)
		}
		return string(data), "stdin", nil, nil
	}

	path := args[0]
	if !isCSVFile(path) {
		return "", "", nil, fmt.Errorf("%s is not a CSV file (want a .csv extension)", path)
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return "", "", nil, fmt.Errorf("read %s: %w", path, rerr)
	}
	reload = func() (dataset.Dataset, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return dataset.Dataset{}, fmt.Errorf("read %s: %w", path, err)
		}
		return dataset.Parse(string(b)), nil
	}
	return string(data), filepath.Base(path), reload, nil
}

// buildEngine assembles the engine from config plus flag overrides and
// installs the requested search, sort, and where filters.
func buildEngine(cfg config.Config, d dataset.Dataset, lgr logr.Logger) (*engine.Engine, error) {
	pageSize := cfg.Engine.PageSize
	if pageSizeFlag > 0 {
		pageSize = pageSizeFlag
	}
	eng := engine.New(
		engine.WithLogger(lgr),
		engine.WithWindowMode(cfg.Engine.WindowMode()),
		engine.WithPageSize(pageSize),
		engine.WithBatchSize(cfg.Engine.BatchSize),
	)
	eng.Load(d.Headers, d.Rows)

	if searchTerm != "" {
		eng.SetSearchTerm(searchTerm)
	}
	if sortFlag.spec != nil {
		eng.SetSort(sortFlag.spec)
	}
	if whereExpr != "" {
		ev, err := celhelper.NewEvaluator()
		if err != nil {
			return nil, fmt.Errorf("where filter: %w", err)
		}
		pred, err := ev.CompilePredicate(whereExpr)
		if err != nil {
			return nil, fmt.Errorf("where filter: %w", err)
		}
		eng.SetPredicate(func(r dataset.Row) bool { return pred.Match(r) })
	}
	return eng, nil
}

// resolveFormat applies the flag > config > auto precedence and collapses
// auto onto table (terminal stdout) or csv (piped stdout).
func resolveFormat(cfg config.Config) (formatter.Format, error) {
	name := outputFormat
	if name == "" {
		name = cfg.Output.Format
	}
	f, err := formatter.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if f == formatter.FormatAuto {
		if stdoutIsTerminal() {
			f = formatter.FormatTable
		} else {
			f = formatter.FormatCSV
		}
	}
	return f, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	limitCfg := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := limitCfg.Validate(); err != nil {
		return err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if noColor {
		cfg.Output.NoColor = true
	}

	theme := themeName
	if theme == "" {
		theme = cfg.UI.Theme
	}
	th, ok := ui.ThemeByName(theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (want dark or light)", theme)
	}
	ui.SetCurrentTheme(th)

	keymap := keymapName
	if keymap == "" {
		keymap = cfg.UI.Keymap
	}
	if !ui.IsValidKeyMode(keymap) {
		return fmt.Errorf("unknown keymap %q (want vim or function)", keymap)
	}

	// Positive --log values map onto negative zap levels (debug and below).
	lgr := *logger.Get(int8(-logVerbosity))

	text, name, reload, err := loadInput(args)
	if err != nil {
		if errors.Is(err, errNoInput) {
			return cmd.Help()
		}
		return err
	}

	d := dataset.Parse(text)
	if d.Empty() {
		fmt.Fprintf(cmd.OutOrStdout(), "no data found in %s\n", name)
		return nil
	}

	eng, err := buildEngine(cfg, d, lgr)
	if err != nil {
		return err
	}

	if interactive {
		if reload == nil && !stdoutIsTerminal() {
			return errors.New("interactive mode needs a terminal")
		}
		m := ui.InitialModel(eng, name, ui.ModelConfig{
			KeyMode: ui.KeyMode(keymap),
			NoColor: cfg.Output.NoColor,
			Log:     lgr,
			Reload:  reload,
		})
		return runProgram(m)
	}

	f, err := resolveFormat(cfg)
	if err != nil {
		return err
	}

	rows := limitCfg.Apply(eng.FilteredRows())
	width := outWidth
	if width <= 0 && f == formatter.FormatTable {
		width = detectTerminalWidth()
	}
	return formatter.Render(cmd.OutOrStdout(), f, eng.Headers(), rows, formatter.Options{
		NoColor:  cfg.Output.NoColor,
		MaxWidth: width,
	})
}

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file.csv]",
	Short: "Explore, filter, and edit CSV files in the terminal",
	Long: settings.CliBinaryName + ` loads a CSV file (or piped stdin) into an in-memory table that can
be searched, filtered with CEL expressions, sorted, paginated, and printed in
several formats. With -i it opens an interactive table view that also supports
editing cells and deleting rows.`,
	Example: "\n  csvx people.csv\n  csvx people.csv --search berlin --sort age:desc\n  csvx people.csv --where '_.city == \"berlin\"' -o json\n  cat people.csv | csvx --tail 10\n  csvx -i people.csv\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print " + settings.CliBinaryName + " version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := settings.VersionInformation
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s, built %s)\n",
			settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "open the interactive table view")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "", "output format: auto|table|csv|json|yaml|toml|raw (default from config or auto)")
	rootCmd.Flags().StringVar(&searchTerm, "search", "", "case-insensitive substring filter over all columns")
	rootCmd.Flags().Var(&sortFlag, "sort", "sort by column, e.g. --sort age or --sort age:desc")
	rootCmd.Flags().StringVar(&whereExpr, "where", "", `CEL row filter with '_' as the row, e.g. '_.city == "berlin"'`)
	rootCmd.Flags().IntVar(&limitRecords, "limit", 0, "limit the number of rows printed")
	rootCmd.Flags().IntVar(&offsetRecords, "offset", 0, "skip the first N rows")
	rootCmd.Flags().IntVar(&tailRecords, "tail", 0, "print the last N rows (mutually exclusive with --limit)")
	rootCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "rows per page in paged mode (default from config)")
	rootCmd.Flags().IntVar(&outWidth, "width", 0, "output width in columns (default: detected terminal width)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "theme name: dark or light (default from config)")
	rootCmd.Flags().StringVar(&keymapName, "keymap", "", "keybinding mode: vim or function (default from config)")
	rootCmd.Flags().StringVar(&configFile, "config-file", "", "path to a YAML config file")
	rootCmd.Flags().IntVar(&logVerbosity, "log", 0, "log verbosity (0 = errors only)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
