package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "VIRTUALMIN"

type Config struct {
	port    int
	timeout time.Duration
	verbose bool

	// overridden in tests to trust httptest certificates
	httpClient *http.Client
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("%w: invalid port (must be between 1-65535 inclusive): %d", ErrConfig, c.port)
	}
	if c.timeout <= 0 {
		return fmt.Errorf("%w: invalid timeout (must be greater than zero): %s", ErrConfig, c.timeout)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "mailquota",
		Short:         "Report mailbox disk usage for a Virtualmin domain.",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printUsage(cmd.OutOrStdout(), "No command specified")
				return nil
			}
			printUsage(cmd.OutOrStdout(), "Unrecognized command: "+strings.Join(args, " "))
			return nil
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.IntVarP(&cfg.port, "port", "p", 10000, "port the Virtualmin remote API listens on (env: VIRTUALMIN_PORT)")
	fs.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "time to wait for the API to respond (env: VIRTUALMIN_TIMEOUT)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: VIRTUALMIN_VERBOSE)")
	cmd.Flags().BoolP("version", "V", false, "display version and exit")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newDemoCmd(cfg), newMailboxesCmd(cfg, v))

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetFlagErrorFunc(flagUsage)
	cmd.SetVersionTemplate("mailquota v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// loadCredentials reads the Basic-auth pair once so it can be handed to the
// client instead of being looked up at request time.
func loadCredentials(v *viper.Viper) (Credentials, error) {
	creds := Credentials{
		Username: v.GetString("username"),
		Password: v.GetString("password"),
	}

	var errs []error
	if creds.Username == "" {
		errs = append(errs, fmt.Errorf("%w: %s_USERNAME not set", ErrConfig, envPrefix))
	}
	if creds.Password == "" {
		errs = append(errs, fmt.Errorf("%w: %s_PASSWORD not set", ErrConfig, envPrefix))
	}

	return creds, errors.Join(errs...)
}
