package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/natours-api/internal/config"
	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/platform/logger"
	"github.com/phrazzld/natours-api/internal/platform/storage"
	"github.com/phrazzld/natours-api/internal/service"
)

// serviceOpener connects to the configured database and returns the tour
// service over it together with a function releasing the connection.
type serviceOpener func(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (service.TourService, func(context.Context) error, error)

func openTourService(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (service.TourService, func(context.Context) error, error) {
	b, err := storage.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.NewTourService(b.Tours, log)
	if err != nil {
		_ = b.Close(ctx)
		return nil, nil, err
	}
	return svc, b.Close, nil
}

type options struct {
	file      string
	configDir string
	doImport  bool
	doDelete  bool
}

func newRootCmd(open serviceOpener) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "import-data (--import --file tours.json | --delete)",
		Short: "Load tours from a JSON file or delete every tour",
		Long: "import-data loads development data into the configured database.\n" +
			"--import inserts every tour of --file in one batch; a single invalid or\n" +
			"duplicate tour aborts the whole batch. --delete removes every tour.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.doImport && opts.file == "" {
				return errors.New("--import requires --file")
			}

			cfg, err := config.LoadFrom(opts.configDir)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log := logger.New(cmd.ErrOrStderr(), cfg.Server.LogLevel)

			ctx := cmd.Context()
			svc, closeFn, err := open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeFn(context.Background()); err != nil {
					log.Error("error closing database connection", slog.String("error", err.Error()))
				}
			}()

			if opts.doDelete {
				n, err := svc.DeleteAllTours(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Data successfully deleted! (%d tours)\n", n)
				return nil
			}

			tours, err := readTours(opts.file)
			if err != nil {
				return err
			}
			n, err := svc.ImportTours(ctx, tours)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data successfully loaded! (%d tours)\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON file holding an array of tours")
	cmd.Flags().StringVar(&opts.configDir, "config", ".", "directory holding an optional config.yaml")
	cmd.Flags().BoolVar(&opts.doImport, "import", false, "import the tours of --file")
	cmd.Flags().BoolVar(&opts.doDelete, "delete", false, "delete every tour")
	cmd.MarkFlagsMutuallyExclusive("import", "delete")
	cmd.MarkFlagsOneRequired("import", "delete")

	return cmd
}

// startDateLayouts are the accepted start date formats. Seed files write
// dates as "2021-04-25,10:00".
var startDateLayouts = []string{time.RFC3339Nano, "2006-01-02,15:04", "2006-01-02T15:04", "2006-01-02"}

// tourEntry is one tour of an import file.
type tourEntry struct {
	domain.Tour
	StartDates []string `json:"startDates"`
}

func readTours(path string) ([]*domain.Tour, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return decodeTours(f)
}

func decodeTours(r io.Reader) ([]*domain.Tour, error) {
	var entries []tourEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode tours: %w", err)
	}

	tours := make([]*domain.Tour, 0, len(entries))
	for i, e := range entries {
		tour := e.Tour
		for _, raw := range e.StartDates {
			start, err := parseStartDate(raw)
			if err != nil {
				return nil, fmt.Errorf("tour %d (%s): %w", i, tour.Name, err)
			}
			tour.StartDates = append(tour.StartDates, start)
		}
		tours = append(tours, &tour)
	}
	return tours, nil
}

func parseStartDate(raw string) (time.Time, error) {
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start date %q", raw)
}
