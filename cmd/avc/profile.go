package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/auth"
	"github.com/assetvault/avc/internal/config"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved connection profiles",
	}
	cmd.AddCommand(profileAddCmd())
	cmd.AddCommand(profileListCmd())
	cmd.AddCommand(profileShowCmd())
	cmd.AddCommand(profileUseCmd())
	cmd.AddCommand(profileDeleteCmd())
	return cmd
}

func profileAddCmd() *cobra.Command {
	var (
		url          string
		token        string
		refreshToken string
		clientID     string
		tokenURL     string
		use          bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a connection profile",
		Long: `Save a named profile holding the API URL and credentials. Use either a
static bearer token, or a refresh token with the identity provider's
token endpoint for automatic renewal during long transfers.

Examples:
  avc profile add prod --url https://api.example.com --token eyJ...
  avc profile add prod --url https://api.example.com \
    --refresh-token eyJ... --client-id abc123 \
    --token-url https://auth.example.com/oauth2/token`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := config.Profile{
				Name:    args[0],
				BaseURL: url,
				Credentials: auth.Credentials{
					Token:        token,
					RefreshToken: refreshToken,
					ClientID:     clientID,
					TokenURL:     tokenURL,
				},
			}
			if p.Credentials.Empty() {
				return fmt.Errorf("a profile needs --token or --refresh-token")
			}
			if refreshToken != "" && tokenURL == "" {
				return fmt.Errorf("--refresh-token requires --token-url")
			}
			if err := config.SaveProfile(p); err != nil {
				return err
			}
			fmt.Printf("Saved profile %s\n", p.Name)
			if use {
				if err := config.SetActiveProfile(p.Name); err != nil {
					return err
				}
				fmt.Printf("Activated profile %s\n", p.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "API URL (required)")
	cmd.Flags().StringVar(&token, "token", "", "Static bearer token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "OAuth2 refresh token")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID for the refresh flow")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "OAuth2 token endpoint for the refresh flow")
	cmd.Flags().BoolVar(&use, "use", false, "Activate the profile after saving")
	cmd.MarkFlagRequired("url")

	return cmd
}

func profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(names)
			}
			if len(names) == 0 {
				fmt.Println("No profiles saved.")
				return nil
			}
			active, _ := config.ActiveProfile()
			for _, name := range names {
				if name == active {
					fmt.Printf("* %s\n", name)
				} else {
					fmt.Printf("  %s\n", name)
				}
			}
			return nil
		},
	}
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a profile's endpoint (credentials are never printed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.LoadProfile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Profile: %s\n", p.Name)
			fmt.Printf("URL:     %s\n", p.BaseURL)
			if p.Credentials.RefreshToken != "" {
				fmt.Println("Auth:    refresh token")
			} else if p.Credentials.Token != "" {
				fmt.Println("Auth:    static token")
			} else {
				fmt.Println("Auth:    none")
			}
			return nil
		},
	}
}

func profileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetActiveProfile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Activated profile %s\n", args[0])
			return nil
		},
	}
}

func profileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteProfile(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted profile %s\n", args[0])
			return nil
		},
	}
}
