package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/transfer"
)

func downloadCmd() *cobra.Command {
	var (
		databaseID string
		assetID    string
		outDir     string
		versionID  string
	)

	cmd := &cobra.Command{
		Use:   "download [key]...",
		Short: "Download asset files",
		Long: `Download files from an asset. Without arguments the whole asset is
downloaded; with key arguments only those files are fetched. Files land
under the output directory, mirroring their remote paths.

Examples:
  avc download --database eng --asset turbine-004 --out ./restore
  avc download cad/blade.stp --database eng --asset turbine-004`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := newSession(ctx)
			if err != nil {
				return err
			}

			keys := args
			sizes := make(map[string]int64)
			if len(keys) == 0 {
				remote, err := sess.client.ListFiles(ctx, databaseID, assetID)
				if err != nil {
					return err
				}
				for _, rf := range remote {
					if rf.IsFolder {
						continue
					}
					keys = append(keys, rf.RelativePath)
					sizes[rf.RelativePath] = rf.Size
				}
				if len(keys) == 0 {
					return fmt.Errorf("asset %s has no files", assetID)
				}
			}

			files := make([]transfer.DownloadFile, 0, len(keys))
			for _, key := range keys {
				target, err := sess.client.GetDownloadTarget(ctx, databaseID, assetID, key, versionID)
				if err != nil {
					return err
				}
				files = append(files, transfer.DownloadFile{
					Key:       key,
					URL:       target.URL,
					LocalPath: filepath.Join(outDir, filepath.FromSlash(strings.TrimPrefix(key, "/"))),
					Size:      sizes[key],
				})
			}

			if !flagJSON {
				fmt.Printf("Downloading %d files from %s/%s to %s\n", len(files), databaseID, assetID, outDir)
			}

			renderer := newProgressRenderer(!flagNoProgress && !flagJSON)
			progress := transfer.NewProgress(renderer.Update)

			downloader := transfer.NewDownloader(transfer.DownloaderOptions{
				MaxParallel: sess.cfg.MaxParallelDownloads,
				Retry:       sess.cfg.RetryPolicy(),
			})
			result := downloader.DownloadFiles(ctx, transfer.NewRunID(), files, progress)

			renderer.Finish(progress.Snapshot())
			printDownloadSummary(result)

			if !result.OverallSuccess {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Database ID (required)")
	cmd.Flags().StringVarP(&assetID, "asset", "a", "", "Asset ID (required)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&versionID, "version", "", "Download a specific file version")
	cmd.MarkFlagRequired("database")
	cmd.MarkFlagRequired("asset")

	return cmd
}
