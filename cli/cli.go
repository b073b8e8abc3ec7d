// Package cli implements the colfilter command line: it loads a CSV file into
// a table, applies per-column filters and prints the rows that remain.
package cli

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/asaidimu/go-colfilter/config"
	"github.com/asaidimu/go-colfilter/core/persistence"
	"github.com/asaidimu/go-colfilter/plugin"
	"github.com/asaidimu/go-colfilter/sqlite"
	"github.com/asaidimu/go-colfilter/table"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the colfilter command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "colfilter",
		Short:         "Filter tabular data column by column",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "colfilter.yaml", "path to the table configuration")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newShowCommand(opts), newClearCommand(opts))
	return root
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	return zapConfig.Build()
}

// openStore returns the store configured in cfg and a function releasing it.
// A nil store means state saving is disabled.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (persistence.Store, func(), error) {
	switch cfg.Persistence.Driver {
	case "":
		return nil, func() {}, nil
	case "memory":
		return persistence.NewMemoryStore(), func() {}, nil
	case "sqlite":
		db, err := sql.Open("sqlite3", cfg.Persistence.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening state database: %w", err)
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Warn("Error closing state database", zap.Error(err))
			}
		}
		store, err := sqlite.NewStore(ctx, db, logger, &sqlite.StoreOptions{TableName: cfg.Persistence.TableName})
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		return store, closeDB, nil
	default:
		return nil, nil, fmt.Errorf("unsupported persistence driver %q", cfg.Persistence.Driver)
	}
}

// parseFilter parses COLUMN=VALUE. Several values are separated by '|'.
func parseFilter(arg string) (int, []string, error) {
	colStr, value, ok := strings.Cut(arg, "=")
	if !ok {
		return 0, nil, fmt.Errorf("filter %q: want COLUMN=VALUE", arg)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return 0, nil, fmt.Errorf("filter %q: bad column: %w", arg, err)
	}
	return col, strings.Split(value, "|"), nil
}

// loadCSV appends every record of r as a text row of t. With header set the
// first record is skipped.
func loadCSV(r io.Reader, t *table.Table, header bool) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = t.Columns()
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("reading CSV: %w", err)
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	for i, record := range records {
		if err := t.AddTextRow(record...); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}

func render(w io.Writer, t *table.Table, rows []int) {
	defs := t.ColumnDefs()
	titles := make([]string, len(defs))
	for i, d := range defs {
		titles[i] = d.Title
	}

	out := tablewriter.NewWriter(w)
	out.SetHeader(titles)
	out.SetAutoFormatHeaders(false)
	for _, row := range rows {
		line := make([]string, t.Columns())
		for col := range line {
			if v := t.Cell(row, col).Value(); v != nil {
				line[col] = *v
			}
		}
		out.Append(line)
	}
	out.Render()
}

type showOptions struct {
	dataPath string
	header   bool
	filters  []string
}

func newShowCommand(root *rootOptions) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the rows that pass the filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), cmd.OutOrStdout(), root, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dataPath, "data", "d", "", "CSV file holding the rows")
	cmd.Flags().BoolVar(&opts.header, "header", true, "skip the first CSV record")
	cmd.Flags().StringArrayVarP(&opts.filters, "filter", "f", nil, "COLUMN=VALUE filter; separate several values with '|'")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runShow(ctx context.Context, w io.Writer, root *rootOptions, opts *showOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(root.verbose)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(root.configPath)
	if err != nil {
		return err
	}

	store, release, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	t := table.New(cfg.ColumnDefs(), table.Options{ID: cfg.TableID, StateSave: cfg.StateSave()}, logger)
	data, err := os.Open(opts.dataPath)
	if err != nil {
		return fmt.Errorf("opening data: %w", err)
	}
	defer data.Close()
	if err := loadCSV(data, t, opts.header); err != nil {
		return err
	}

	filters, err := plugin.FiltersOn(ctx, t, &plugin.Options{
		Store:        store,
		Localization: cfg.Localization,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	for col, spec := range cfg.Filters {
		if _, err := filters.OnInput(ctx, col, spec.Values()...); err != nil {
			return err
		}
	}
	for _, arg := range opts.filters {
		col, values, err := parseFilter(arg)
		if err != nil {
			return err
		}
		if _, err := filters.OnInput(ctx, col, values...); err != nil {
			return err
		}
	}

	rows := t.Draw()
	logger.Info("Rows displayed", zap.Int("displayed", len(rows)), zap.Int("total", t.Rows()))
	render(w, t, rows)
	return nil
}

func newClearCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved filters of the configured table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger, err := newLogger(root.verbose)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			defer logger.Sync()

			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			store, release, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer release()
			if store == nil {
				return fmt.Errorf("table %s does not save state", cfg.TableID)
			}
			if err := store.Delete(ctx, cfg.TableID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared saved filters of %s\n", cfg.TableID)
			return nil
		},
	}
}
