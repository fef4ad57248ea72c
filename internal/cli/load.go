package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pvcreek/internal/modkit"
	"pvcreek/internal/platform/config"
	"pvcreek/internal/platform/logger"
	"pvcreek/internal/platform/store"
	creekmod "pvcreek/internal/services/creek/module"
	loaddom "pvcreek/internal/services/load/domain"
	loadmod "pvcreek/internal/services/load/module"
)

// openStore opens the sink backends named by PVCREEK_PGSQL_* and PVCREEK_CLICKHOUSE_*
var openStore = func(ctx context.Context, cfg config.Conf) (*store.Store, error) {
	sc := store.ConfigFrom(cfg)
	sc.Role = "load"
	return store.Open(ctx, sc, store.WithLogger(*logger.Named("store")))
}

// NewLoadCommand builds the pvcreek-load command
func NewLoadCommand(stdout, stderr io.Writer) *cobra.Command {
	var (
		src  sourceFlags
		crit criteriaFlags
	)
	cfg := config.New()
	defaults := creekmod.FromConfig(cfg)
	lo := loadmod.FromConfig(cfg)

	cmd := newRoot("pvcreek-load", "pvcreek-load - load one hourly dump into postgres and/or clickhouse")
	cmd.Use = "pvcreek-load [NAME|PATH]"
	cmd.Example = `  pvcreek-load --hour 2024-08-01T13 --language en --create-schema
  PVCREEK_LOAD_CH=false pvcreek-load pageviews-20240801-130000.gz --batch 20000`
	cmd.Args = cobra.MaximumNArgs(1)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		req, err := crit.request(&src, args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(context.WithoutCancel(ctx)); err != nil {
				logger.C(ctx).Warn().Err(err).Msg("closing store")
			}
		}()

		deps := modkit.FromStore(*logger.Named("load"), cfg, st)
		creek, err := creekmod.NewWithOptions(src.options(defaults), nil)
		if err != nil {
			return err
		}
		lm, err := loadmod.New(deps, creek.Streamer(), lo)
		if err != nil {
			return err
		}
		return runLoad(ctx, lm.Loader(), loaddom.Request{
			Source:       req,
			BatchSize:    lo.BatchSize,
			CreateSchema: lo.CreateSchema,
		}, stdout, stderr)
	}

	fs := cmd.Flags()
	src.bind(fs, defaults)
	crit.bind(fs)
	fs.IntVar(&lo.BatchSize, "batch", lo.BatchSize, "rows per sink write")
	fs.BoolVar(&lo.CreateSchema, "create-schema", lo.CreateSchema, "create the tables when missing")
	fs.BoolVar(&lo.UsePG, "pg", lo.UsePG, "write to postgres when PVCREEK_PGSQL_DBURL is set")
	fs.BoolVar(&lo.UseCH, "ch", lo.UseCH, "write to clickhouse when PVCREEK_CLICKHOUSE_DBURL is set")

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// runLoad runs req and prints the result as JSON on stdout and a summary on stderr
func runLoad(ctx context.Context, lp loaddom.LoaderPort, req loaddom.Request, stdout, stderr io.Writer) error {
	res, err := lp.Run(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	for sink, n := range res.Written {
		_, _ = p.Fprintf(stderr, "%s: %d rows into %s in %d batches (%v)\n",
			res.Dump, n, sink, res.Batches, res.Took.Round(time.Millisecond))
	}
	return nil
}
