package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/transfer"
)

func uploadCmd() *cobra.Command {
	var (
		databaseID string
		assetID    string
		recursive  bool
		prefix     string
		uploadType string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files or a directory to an asset",
		Long: `Upload files to an asset. A single directory argument uploads its
contents; multiple file arguments are uploaded under their base names.

Large files are split into parts and transferred concurrently. Preview
files (named <base>.previewFile.<ext>) are uploaded after the files they
belong to.

Examples:
  avc upload ./model --database eng --asset turbine-004 --recursive
  avc upload a.stp b.stp --database eng --asset turbine-004 --prefix cad/
  avc upload huge.bin --database eng --asset turbine-004 --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := newSession(ctx)
			if err != nil {
				return err
			}

			files, err := collectUploadFiles(args, recursive, prefix)
			if err != nil {
				return err
			}

			limits := sess.cfg.Limits()
			for _, f := range files {
				if err := transfer.ValidateForUpload(f, limits); err != nil {
					return err
				}
			}
			if orphans := transfer.ValidatePreviewPairs(files); len(orphans) > 0 {
				return fmt.Errorf("preview files without a matching base file: %v", orphans)
			}

			sequences, err := transfer.PlanSequences(files, limits)
			if err != nil {
				return err
			}

			var totalBytes int64
			for _, f := range files {
				totalBytes += f.Size
			}
			if !flagJSON {
				fmt.Printf("Uploading %d files (%s) in %d sequences to %s/%s\n",
					len(files), transfer.FormatBytes(totalBytes), len(sequences), databaseID, assetID)
			}

			renderer := newProgressRenderer(!flagNoProgress && !flagJSON)
			progress := transfer.NewProgress(renderer.Update)

			uploader := transfer.NewUploader(sess.client, transfer.UploaderOptions{
				MaxParallel: sess.cfg.MaxParallelUploads,
				Retry:       sess.cfg.RetryPolicy(),
				ForceSkip:   force || sess.cfg.ForceSkip,
			})

			result := uploader.UploadSequences(ctx, transfer.NewRunID(), sequences, transfer.UploadRequest{
				DatabaseID: databaseID,
				AssetID:    assetID,
				UploadType: uploadType,
			}, progress)

			renderer.Finish(progress.Snapshot())
			printUploadSummary(result)

			if !result.OverallSuccess {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.Flags().StringVarP(&assetID, "asset", "a", "", "Asset ID (required)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include subdirectories when uploading a directory")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Remote path prefix inside the asset")
	cmd.Flags().StringVar(&uploadType, "type", "", "Override the upload type sent to the server")
	cmd.Flags().BoolVar(&force, "force", false, "Continue past files that fail instead of aborting")
	cmd.MarkFlagRequired("database")
	cmd.MarkFlagRequired("asset")

	return cmd
}

// collectUploadFiles resolves the positional arguments into staged files: one
// directory argument means a tree upload, anything else is a file list.
func collectUploadFiles(args []string, recursive bool, prefix string) ([]transfer.FileInfo, error) {
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, fmt.Errorf("path not found: %s", args[0])
		}
		if info.IsDir() {
			return transfer.CollectDirectory(args[0], recursive, prefix)
		}
	}
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("path not found: %s", p)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("cannot mix directories and files: %s", p)
		}
	}
	return transfer.CollectFiles(args, prefix)
}
