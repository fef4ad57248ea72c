package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pvcreek/internal/adapters/ingest/dumps"
	"pvcreek/internal/platform/config"
	perr "pvcreek/internal/platform/errors"
	creekmod "pvcreek/internal/services/creek/module"
)

func newFilenameCommand(stdout io.Writer) *cobra.Command {
	var hour, baseURL string

	cmd := &cobra.Command{
		Use:   "filename --hour HOUR",
		Short: "Print the canonical dump name and mirror url of an hour",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if hour == "" {
				return perr.WithField(perr.InvalidArgf("--hour is required"), "hour")
			}
			t, err := dumps.ParseHour(hour)
			if err != nil {
				return err
			}
			name := dumps.FilenameFor(t)
			url, err := dumps.URLFor(baseURL, name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(stdout, "%s\n%s\n", name, url)
			return err
		},
	}
	cmd.Flags().StringVar(&hour, "hour", "", "RFC3339 or YYYY-MM-DDTHH")
	cmd.Flags().StringVar(&baseURL, "base-url", creekmod.FromConfig(config.New()).BaseURL, "pageviews mirror base url")
	return cmd
}
