package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/database"
)

func migrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Execute database schema migration only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withCore(func(c *core) error {
				if err := database.Migrate(c.db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
				return nil
			})
		},
	}
}

func importCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import reports from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := openFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return e.withCore(func(c *core) error {
				result, err := c.ingestion.ImportCSV(cmd.Context(), f)
				if err != nil {
					return err
				}
				printBatch(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func fetchCommand(e *env) *cobra.Command {
	var endpoint, apiKey string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch reports from an external feed and import them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withCore(func(c *core) error {
				result, err := c.ingestion.FetchExternal(cmd.Context(), endpoint, apiKey)
				if err != nil {
					return err
				}
				printBatch(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "feed URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "feed credential, sent as a bearer token")
	_ = cmd.MarkFlagRequired("endpoint")
	_ = cmd.MarkFlagRequired("api-key")
	return cmd
}

func listCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every report in submission order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withCore(func(c *core) error {
				reports, err := c.store.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reports)
			})
		},
	}
}

func historyCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history <domain>",
		Short: "Print the reports filed against a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := strings.TrimSpace(args[0])
			if domain == "" {
				return errors.New("domain name is required")
			}
			return e.withCore(func(c *core) error {
				reports, err := c.store.FindByDomain(cmd.Context(), domain)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reports)
			})
		},
	}
}

func updateCommand(e *env) *cobra.Command {
	var status, reviewer string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Set the review status of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil {
				return fmt.Errorf("invalid report id %q", args[0])
			}
			return e.withCore(func(c *core) error {
				report, err := c.store.Update(cmd.Context(), uint(id), status, reviewer)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New, Reviewed, Escalated or Suspended")
	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer identifier")
	_ = cmd.MarkFlagRequired("status")
	_ = cmd.MarkFlagRequired("reviewer")
	return cmd
}
