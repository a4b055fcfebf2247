package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/api"
)

func assetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Manage assets",
	}
	cmd.AddCommand(assetCreateCmd())
	cmd.AddCommand(assetGetCmd())
	cmd.AddCommand(assetListCmd())
	cmd.AddCommand(assetArchiveCmd())
	cmd.AddCommand(assetDeleteCmd())
	return cmd
}

func assetCreateCmd() *cobra.Command {
	var (
		databaseID    string
		name          string
		description   string
		assetType     string
		tags          []string
		distributable bool
	)

	cmd := &cobra.Command{
		Use:   "create <asset-id>",
		Short: "Create a new asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if name == "" {
				name = args[0]
			}
			created, err := sess.client.CreateAsset(cmd.Context(), api.Asset{
				DatabaseID:      databaseID,
				AssetID:         args[0],
				AssetName:       name,
				Description:     description,
				AssetType:       assetType,
				Tags:            tags,
				IsDistributable: distributable,
			})
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(created)
			}
			fmt.Printf("Created asset %s in database %s\n", created.AssetID, created.DatabaseID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the asset ID)")
	cmd.Flags().StringVar(&description, "description", "", "Asset description")
	cmd.Flags().StringVar(&assetType, "type", "", "Asset type label")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().BoolVar(&distributable, "distributable", false, "Mark the asset as distributable")
	cmd.MarkFlagRequired("database")

	return cmd
}

func assetGetCmd() *cobra.Command {
	var databaseID string

	cmd := &cobra.Command{
		Use:   "get <asset-id>",
		Short: "Show one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			asset, err := sess.client.GetAsset(cmd.Context(), databaseID, args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(asset)
			}
			fmt.Printf("Asset:       %s\n", asset.AssetID)
			fmt.Printf("Name:        %s\n", asset.AssetName)
			fmt.Printf("Database:    %s\n", asset.DatabaseID)
			if asset.AssetType != "" {
				fmt.Printf("Type:        %s\n", asset.AssetType)
			}
			if asset.Description != "" {
				fmt.Printf("Description: %s\n", asset.Description)
			}
			if len(asset.Tags) > 0 {
				fmt.Printf("Tags:        %v\n", asset.Tags)
			}
			if asset.Status != "" {
				fmt.Printf("Status:      %s\n", asset.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.MarkFlagRequired("database")

	return cmd
}

func assetListCmd() *cobra.Command {
	var databaseID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the assets of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			assets, err := sess.client.ListAssets(cmd.Context(), databaseID)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(assets)
			}
			if len(assets) == 0 {
				fmt.Println("No assets found.")
				return nil
			}
			for _, a := range assets {
				line := a.AssetID
				if a.AssetName != "" && a.AssetName != a.AssetID {
					line += "  (" + a.AssetName + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.MarkFlagRequired("database")

	return cmd
}

func assetArchiveCmd() *cobra.Command {
	var databaseID string

	cmd := &cobra.Command{
		Use:   "archive <asset-id>",
		Short: "Archive an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.ArchiveAsset(cmd.Context(), databaseID, args[0]); err != nil {
				return err
			}
			fmt.Printf("Archived asset %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.MarkFlagRequired("database")

	return cmd
}

func assetDeleteCmd() *cobra.Command {
	var databaseID string

	cmd := &cobra.Command{
		Use:   "delete <asset-id>",
		Short: "Permanently delete an archived asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.DeleteAsset(cmd.Context(), databaseID, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted asset %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.MarkFlagRequired("database")

	return cmd
}
