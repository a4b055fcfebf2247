package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/transfer"
)

func filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage the files of an asset",
	}
	cmd.AddCommand(filesListCmd())
	cmd.AddCommand(filesInfoCmd())
	cmd.AddCommand(filesMkdirCmd())
	cmd.AddCommand(filesMoveCmd())
	cmd.AddCommand(filesCopyCmd())
	cmd.AddCommand(filesDeleteCmd())
	cmd.AddCommand(filesSetPrimaryCmd())
	return cmd
}

// assetFlags wires the --database/--asset pair shared by every files
// subcommand.
func assetFlags(cmd *cobra.Command, databaseID, assetID *string) {
	cmd.Flags().StringVarP(databaseID, "database", "d", "", "Database ID (required)")
	cmd.Flags().StringVarP(assetID, "asset", "a", "", "Asset ID (required)")
	cmd.MarkFlagRequired("database")
	cmd.MarkFlagRequired("asset")
}

func filesListCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the files of an asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			files, err := sess.client.ListFiles(cmd.Context(), databaseID, assetID)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(files)
			}
			if len(files) == 0 {
				fmt.Println("No files found.")
				return nil
			}
			for _, f := range files {
				if f.IsFolder {
					fmt.Printf("%10s  %s/\n", "-", f.RelativePath)
					continue
				}
				fmt.Printf("%10s  %s\n", transfer.FormatBytes(f.Size), f.RelativePath)
			}
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func filesInfoCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "info <key>",
		Short: "Show details of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			f, err := sess.client.GetFileInfo(cmd.Context(), databaseID, assetID, args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(f)
			}
			fmt.Printf("Key:      %s\n", f.RelativePath)
			fmt.Printf("Size:     %s\n", transfer.FormatBytes(f.Size))
			if f.VersionID != "" {
				fmt.Printf("Version:  %s\n", f.VersionID)
			}
			if f.PrimaryType != "" {
				fmt.Printf("Primary:  %s\n", f.PrimaryType)
			}
			if f.DateModified != "" {
				fmt.Printf("Modified: %s\n", f.DateModified)
			}
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func filesMkdirCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "mkdir <key>",
		Short: "Create a folder inside an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.CreateFolder(cmd.Context(), databaseID, assetID, args[0]); err != nil {
				return err
			}
			fmt.Printf("Created folder %s\n", args[0])
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func filesMoveCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "move <source-key> <dest-key>",
		Short: "Move or rename a file within an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.MoveFile(cmd.Context(), databaseID, assetID, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Moved %s to %s\n", args[0], args[1])
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func filesCopyCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "copy <source-key> <dest-key>",
		Short: "Copy a file within an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.CopyFile(cmd.Context(), databaseID, assetID, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Copied %s to %s\n", args[0], args[1])
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func filesDeleteCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a file from an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.DeleteFile(cmd.Context(), databaseID, assetID, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}

func filesSetPrimaryCmd() *cobra.Command {
	var databaseID, assetID string

	cmd := &cobra.Command{
		Use:   "set-primary <key>",
		Short: "Mark a file as the asset's primary file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.SetPrimaryFile(cmd.Context(), databaseID, assetID, args[0]); err != nil {
				return err
			}
			fmt.Printf("Set %s as primary file\n", args[0])
			return nil
		},
	}

	assetFlags(cmd, &databaseID, &assetID)
	return cmd
}
