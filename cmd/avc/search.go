package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/api"
)

func searchCmd() *cobra.Command {
	var (
		databaseID string
		from       int
		size       int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the asset index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			res, err := sess.client.Search(cmd.Context(), api.SearchRequest{
				Query:      args[0],
				DatabaseID: databaseID,
				From:       from,
				Size:       size,
			})
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(res)
			}
			fmt.Printf("%d results\n", res.Total)
			for _, hit := range res.Hits {
				line := hit.DatabaseID + "/" + hit.AssetID
				if hit.AssetName != "" && hit.AssetName != hit.AssetID {
					line += "  (" + hit.AssetName + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&databaseID, "database", "d", "", "Restrict the search to one database")
	cmd.Flags().IntVar(&from, "from", 0, "Result offset for paging")
	cmd.Flags().IntVar(&size, "size", 50, "Maximum results to return")

	return cmd
}
