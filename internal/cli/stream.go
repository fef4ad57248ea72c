package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"pvcreek/internal/platform/config"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/platform/logger"
	"pvcreek/internal/services/creek/domain"
	creekmod "pvcreek/internal/services/creek/module"
)

// Output formats of the stream command
const (
	FormatNDJSON = "ndjson"
	FormatTSV    = "tsv"
)

func newStreamCommand(stdout, stderr io.Writer) *cobra.Command {
	var (
		src    sourceFlags
		crit   criteriaFlags
		format string
	)
	defaults := creekmod.FromConfig(config.New())

	cmd := &cobra.Command{
		Use:   "stream [NAME|PATH]",
		Short: "Stream the records of one hourly dump to stdout",
		Long: `Stream reads one dump, from the mirror by name or --hour, or from a local
file, applies the line and record filters and writes one record per line.`,
		Example: `  pvcreek stream pageviews-20240801-130000.gz --language en --min-views 100
  pvcreek stream --hour 2024-08-01T13 --domain-code-re '^de' --format tsv
  pvcreek stream ./pageviews-20240801-130000.gz --mobile true --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != FormatNDJSON && format != FormatTSV {
				return perr.WithField(perr.Validationf("--format must be %s or %s", FormatNDJSON, FormatTSV), "format")
			}
			req, err := crit.request(&src, args)
			if err != nil {
				return err
			}
			creek, err := creekmod.NewWithOptions(src.options(defaults), nil)
			if err != nil {
				return err
			}
			return runStream(cmd, creek.Streamer(), req, format, stdout, stderr)
		},
	}
	fs := cmd.Flags()
	src.bind(fs, defaults)
	crit.bind(fs)
	fs.StringVar(&format, "format", FormatNDJSON, "output format, ndjson or tsv")
	return cmd
}

func runStream(cmd *cobra.Command, sp domain.StreamerPort, req domain.Request, format string, stdout, stderr io.Writer) error {
	started := time.Now()
	st, err := sp.Open(cmd.Context(), req)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	out := bufio.NewWriterSize(stdout, 64<<10)
	write := recordWriter(out, format)
	for {
		rec, err := st.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = out.Flush()
			return err
		}
		if err := write(rec); err != nil {
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return err
	}

	s := st.Stats()
	logger.C(cmd.Context()).Info().
		Str("dump", st.Name()).
		Int("lines_read", s.LinesRead).
		Int("parsed", s.Parsed).
		Int("skipped", s.Skipped).
		Int("emitted", s.Emitted).
		Dur("took", time.Since(started)).
		Msg("stream done")
	summary(stderr, st.Name(), s, time.Since(started))
	return nil
}

func recordWriter(w *bufio.Writer, format string) func(domain.Record) error {
	if format == FormatTSV {
		return func(r domain.Record) error {
			_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				r.DomainCode, r.PageTitle, r.ViewCount, r.Language, r.ProjectDomain, strconv.FormatBool(r.IsMobile))
			return err
		}
	}
	enc := json.NewEncoder(w)
	return func(r domain.Record) error { return enc.Encode(r) }
}

// summary prints grouped counts for people reading the terminal
func summary(w io.Writer, name string, s domain.Stats, took time.Duration) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "%s: %d records from %d lines (%d bytes, %d skipped) in %v\n",
		name, s.Emitted, s.LinesRead, s.Bytes, s.Skipped, took.Round(time.Millisecond))
}
