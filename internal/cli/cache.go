package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pvcreek/internal/platform/config"
	perr "pvcreek/internal/platform/errors"
	"pvcreek/internal/services/creek/domain"
	creekmod "pvcreek/internal/services/creek/module"
)

func newDownloadCommand(stdout io.Writer) *cobra.Command {
	var src sourceFlags
	defaults := creekmod.FromConfig(config.New())

	cmd := &cobra.Command{
		Use:   "download [NAME]",
		Short: "Download a dump into --cache-dir unless it is already there, print its path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := src.name(args)
			if err != nil {
				return err
			}
			c, err := openCache(&src, defaults)
			if err != nil {
				return err
			}
			path, _, err := c.Download(cmd.Context(), name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, path)
			return err
		},
	}
	src.bind(cmd.Flags(), defaults)
	return cmd
}

func newCachedCommand(stdout io.Writer) *cobra.Command {
	var src sourceFlags
	defaults := creekmod.FromConfig(config.New())

	cmd := &cobra.Command{
		Use:   "cached [NAME]",
		Short: "Print whether a dump is in --cache-dir; exits 1 when it is not",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, err := src.name(args)
			if err != nil {
				return err
			}
			c, err := openCache(&src, defaults)
			if err != nil {
				return err
			}
			ok, err := c.IsCached(name)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(stdout, ok); err != nil {
				return err
			}
			if !ok {
				return ExitError{Code: 1}
			}
			return nil
		},
	}
	src.bind(cmd.Flags(), defaults)
	return cmd
}

func openCache(src *sourceFlags, defaults creekmod.Options) (domain.CachePort, error) {
	if strings.TrimSpace(src.cacheDir) == "" {
		return nil, perr.WithField(perr.InvalidArgf("--cache-dir is required"), "cache_dir")
	}
	m, err := creekmod.NewWithOptions(src.options(defaults), nil)
	if err != nil {
		return nil, err
	}
	return m.Cache(), nil
}
