package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/assetvault/avc/internal/api"
)

func databaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Manage asset databases",
	}
	cmd.AddCommand(databaseCreateCmd())
	cmd.AddCommand(databaseGetCmd())
	cmd.AddCommand(databaseListCmd())
	cmd.AddCommand(databaseDeleteCmd())
	return cmd
}

func databaseCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <database-id>",
		Short: "Create an asset database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			err = sess.client.CreateDatabase(cmd.Context(), api.Database{
				DatabaseID:  args[0],
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created database %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Database description")

	return cmd
}

func databaseGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <database-id>",
		Short: "Show one database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			db, err := sess.client.GetDatabase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(db)
			}
			fmt.Printf("Database:    %s\n", db.DatabaseID)
			if db.Description != "" {
				fmt.Printf("Description: %s\n", db.Description)
			}
			if db.AssetCount > 0 {
				fmt.Printf("Assets:      %d\n", db.AssetCount)
			}
			return nil
		},
	}
}

func databaseListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List visible databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			dbs, err := sess.client.ListDatabases(cmd.Context())
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(dbs)
			}
			if len(dbs) == 0 {
				fmt.Println("No databases found.")
				return nil
			}
			for _, db := range dbs {
				line := db.DatabaseID
				if db.Description != "" {
					line += "  " + db.Description
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func databaseDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <database-id>",
		Short: "Delete an empty database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.client.DeleteDatabase(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted database %s\n", args[0])
			return nil
		},
	}
}
