package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind        string
	databaseURL string
	port        int
	prefix      string
	profile     bool
	revealDelay time.Duration
	roundDelay  time.Duration
	rounds      int
	threshold   int
	tlsCert     string
	tlsKey      string
	verbose     bool
	version     bool
	wordsFile   string
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round count (must be at least 1): %d", c.rounds)
	}
	if c.threshold < 1 {
		return fmt.Errorf("invalid victory threshold (must be at least 1): %d", c.threshold)
	}
	if c.roundDelay < 0 || c.revealDelay < 0 {
		return errors.New("delays cannot be negative")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FAKEARTIST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "fakeartist",
		Short:         "An authoritative server for the fake artist drawing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			setupLogging(cfg)
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FAKEARTIST_BIND)")
	fs.StringVar(&cfg.databaseURL, "database-url", "", "postgres connection string for persisting standings (env: FAKEARTIST_DATABASE_URL)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FAKEARTIST_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FAKEARTIST_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FAKEARTIST_PROFILE)")
	fs.DurationVar(&cfg.revealDelay, "reveal-delay", 5*time.Second, "pause between the vote reveal and scoring (env: FAKEARTIST_REVEAL_DELAY)")
	fs.DurationVar(&cfg.roundDelay, "round-delay", 3*time.Second, "pause between drawing rounds (env: FAKEARTIST_ROUND_DELAY)")
	fs.IntVar(&cfg.rounds, "rounds", 2, "number of drawing rounds before the vote (env: FAKEARTIST_ROUNDS)")
	fs.IntVar(&cfg.threshold, "victory-threshold", 5, "score at which a player is crowned champion (env: FAKEARTIST_VICTORY_THRESHOLD)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FAKEARTIST_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FAKEARTIST_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FAKEARTIST_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FAKEARTIST_VERSION)")
	fs.StringVar(&cfg.wordsFile, "words", "", "path to a custom word list, overriding the built-in one (env: FAKEARTIST_WORDS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("fakeartist v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
