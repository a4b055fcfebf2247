// avc is a command-line client for the AssetVault asset management service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/api"
	"github.com/assetvault/avc/internal/auth"
	"github.com/assetvault/avc/internal/config"
)

var (
	// Global flags
	flagURL        string
	flagToken      string
	flagProfile    string
	flagVerbose    bool
	flagJSON       bool
	flagNoProgress bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "avc",
		Short: "AssetVault CLI - Manage assets and transfer files from the command line",
		Long: `avc provides command-line access to an AssetVault deployment.

Upload and download asset files, manage databases, assets and metadata,
and search the asset index.

Configuration:
  Set AVC_URL and AVC_TOKEN environment variables, use --url and --token
  flags, or save a connection profile with "avc profile add".

Examples:
  avc upload ./model --database eng --asset turbine-004 --recursive
  avc download --database eng --asset turbine-004 --out ./restore
  avc asset list --database eng
  avc search "turbine blade"`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "AssetVault API URL (or AVC_URL env)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Bearer token (or AVC_TOKEN env)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Connection profile to use (default: active profile)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Emit machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&flagNoProgress, "no-progress", false, "Disable the progress display")

	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(downloadCmd())
	rootCmd.AddCommand(assetCmd())
	rootCmd.AddCommand(databaseCmd())
	rootCmd.AddCommand(filesCmd())
	rootCmd.AddCommand(metadataCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(profileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session bundles everything a command needs to talk to the service.
type session struct {
	cfg    *config.Config
	client *api.Client
}

// newSession resolves configuration in precedence order (flags, environment,
// profile) and builds an authenticated API client.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagURL != "" {
		cfg.BaseURL = flagURL
	}
	if flagToken != "" {
		cfg.Token = flagToken
	}

	creds := auth.Credentials{Token: cfg.Token}

	profileName := flagProfile
	if profileName == "" {
		profileName, _ = config.ActiveProfile()
	}
	if profileName != "" && (cfg.BaseURL == "" || creds.Empty()) {
		p, err := config.LoadProfile(profileName)
		if err != nil {
			return nil, err
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = p.BaseURL
		}
		if creds.Empty() {
			creds = p.Credentials
		}
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("API URL is required (use --url, AVC_URL, or a saved profile)")
	}

	ts, err := creds.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication is required (use --token, AVC_TOKEN, or a saved profile): %w", err)
	}

	client, err := api.New(api.Config{
		BaseURL:     cfg.BaseURL,
		TokenSource: ts,
		Timeout:     cfg.APITimeout,
		Logger:      slog.Default(),
	})
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, client: client}, nil
}
