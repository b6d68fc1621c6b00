package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	keyFlag string
	rootCmd = &cobra.Command{
		Use:   "notedropctl",
		Short: "CLI client for the notedrop REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "notedrop service base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", "sk_local_notedrop_dev_key", "API key")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			archived, _ := cmd.Flags().GetString("archived")
			review, _ := cmd.Flags().GetBool("review")
			return runList(apiFlag, keyFlag, category, archived, review, os.Stdout)
		},
	}
	listCmd.Flags().StringP("category", "c", "", "Filter by category (person|project|idea|task)")
	listCmd.Flags().String("archived", "", "Archived filter (false|true|include)")
	listCmd.Flags().Bool("review", false, "Only entries needing review")
	rootCmd.AddCommand(listCmd)

	classifyCmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify free text into a new entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(apiFlag, keyFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(classifyCmd)

	getCmd := &cobra.Command{
		Use:   "get [entry-id]",
		Short: "Fetch one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(apiFlag, keyFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(getCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete [entry-id]",
		Short: "Delete one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(apiFlag, keyFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(deleteCmd)

	digestCmd := &cobra.Command{
		Use:   "digest",
		Short: "Fetch today's focus digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(apiFlag, keyFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(digestCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
