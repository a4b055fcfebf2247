package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func metadataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Manage asset metadata",
	}
	cmd.AddCommand(metadataGetCmd())
	cmd.AddCommand(metadataSetCmd())
	cmd.AddCommand(metadataDeleteCmd())
	return cmd
}

func metadataGetCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show an asset's metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			md, err := sess.client.GetMetadata(cmd.Context(), databaseID, assetID)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(md)
			}
			if len(md) == 0 {
				fmt.Println("No metadata.")
				return nil
			}
			keys := make([]string, 0, len(md))
			for k := range md {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s: %s\n", k, md[k])
			}
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func metadataSetCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Set metadata key/value pairs on an asset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md := make(map[string]string, len(args))
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid metadata pair %q, expected key=value", arg)
				}
				md[k] = v
			}

			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.SetMetadata(cmd.Context(), databaseID, assetID, md); err != nil {
				return err
			}
			fmt.Printf("Set %d metadata entries on %s\n", len(md), assetID)
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func metadataDeleteCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete one metadata key from an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.DeleteMetadata(cmd.Context(), databaseID, assetID, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted metadata key %s\n", args[0])
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}
