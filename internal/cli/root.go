// Package cli holds the cobra commands behind the pvcreek binaries
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pvcreek/internal/core/version"
)

// EnvPrefix prefixes the environment form of every flag
const EnvPrefix = "PVCREEK"

// ExitError carries a process exit code without an error message
type ExitError struct{ Code int }

func (e ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode maps the error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// NewRootCommand builds the pvcreek command with all of its subcommands
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rc := newRoot("pvcreek", "pvcreek - filter and stream Wikimedia hourly pageview dumps")
	rc.AddCommand(
		newStreamCommand(stdout, stderr),
		newDownloadCommand(stdout),
		newCachedCommand(stdout),
		newFilenameCommand(stdout),
	)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func newRoot(use, short string) *cobra.Command {
	info := version.Info(use)
	rc := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       info.Version + " (" + info.Commit + ", " + info.Date + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setAllConfig(viper.New(), cmd.Flags(), EnvPrefix)
		},
	}
	rc.PersistentFlags().String("config", "", "optional TOML file with flag values")
	return rc
}

// setAllConfig fills every flag not given on the command line from, in order,
// PVCREEK_<FLAG> env vars, then the --config file, then the flag default
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, envPrefix string) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", c, err)
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			flagErr = fmt.Errorf("--%s: %w", f.Name, err)
		}
	})
	return flagErr
}
