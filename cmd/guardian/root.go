package main

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	guardian "github.com/guardianai/client-go"
)

var (
	flagConfig     string
	flagAPIKey     string
	flagBaseURL    string
	flagTimeout    time.Duration
	flagMaxRetries int
	flagDebug      bool
)

var rootCmd = &cobra.Command{
	Use:           "guardian",
	Short:         "Guardian text-threat-analysis CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Populate the environment from a local .env, if one exists.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (falls back to GUARDIAN_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "endpoint root (falls back to GUARDIAN_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "per-attempt timeout (default 10s)")
	rootCmd.PersistentFlags().IntVar(&flagMaxRetries, "max-retries", -1, "retry budget (default 3)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "emit diagnostics to stderr")
}

// newClient builds an SDK client from flags, the optional config file,
// and the environment, in that precedence order.
func newClient() (*guardian.Client, error) {
	fileCfg, err := loadFileConfig(flagConfig)
	if err != nil {
		return nil, err
	}

	apiKey := flagAPIKey
	if apiKey == "" {
		apiKey = fileCfg.APIKey
	}

	var opts []guardian.Option
	switch {
	case flagBaseURL != "":
		opts = append(opts, guardian.WithBaseURL(flagBaseURL))
	case fileCfg.BaseURL != "":
		opts = append(opts, guardian.WithBaseURL(fileCfg.BaseURL))
	}
	switch {
	case flagTimeout > 0:
		opts = append(opts, guardian.WithTimeout(flagTimeout))
	case fileCfg.Timeout > 0:
		opts = append(opts, guardian.WithTimeout(fileCfg.Timeout))
	}
	switch {
	case flagMaxRetries >= 0:
		opts = append(opts, guardian.WithMaxRetries(flagMaxRetries))
	case fileCfg.MaxRetries != nil:
		opts = append(opts, guardian.WithMaxRetries(*fileCfg.MaxRetries))
	}
	if flagDebug || fileCfg.Debug {
		opts = append(opts, guardian.WithDebug())
	}

	return guardian.New(apiKey, opts...)
}
