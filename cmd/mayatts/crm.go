package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/example/go-maya-tts/internal/crm"
	"github.com/spf13/cobra"
)

func newCRMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crm",
		Short: "Manage the contact store",
	}

	cmd.AddCommand(newCRMAddCmd())
	cmd.AddCommand(newCRMSearchCmd())
	cmd.AddCommand(newCRMCountCmd())
	cmd.AddCommand(newCRMSummaryCmd())

	return cmd
}

func openCRMStore(cmd *cobra.Command) (*crm.Store, error) {
	cfg, err := requireConfig()
	if err != nil {
		return nil, err
	}

	return crm.Open(cmd.Context(), cfg.CRM, slog.Default())
}

func newCRMAddCmd() *cobra.Command {
	var contact crm.Contact

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCRMStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.AddContact(cmd.Context(), contact)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(os.Stdout, "added contact %d\n", id)
			return err
		},
	}

	cmd.Flags().StringVar(&contact.Name, "name", "", "Contact name (required)")
	cmd.Flags().StringVar(&contact.Company, "company", "", "Company name")
	cmd.Flags().StringVar(&contact.Role, "role", "", "Job title")
	cmd.Flags().StringVar(&contact.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&contact.Status, "status", "", "Pipeline status (default lead)")
	cmd.Flags().StringVar(&contact.Notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCRMSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts by name, company or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCRMStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			contacts, err := store.SearchContacts(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			if len(contacts) == 0 {
				_, err = fmt.Fprintln(os.Stdout, "no contacts found")
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, c := range contacts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Role, c.Company, c.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of results")

	return cmd
}

func newCRMCountCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count contacts, optionally by pipeline status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCRMStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.CountContacts(cmd.Context(), status)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(os.Stdout, "%d\n", n)
			return err
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Count only contacts with this status")

	return cmd
}

func newCRMSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show contact counts by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCRMStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sum, err := store.Summarize(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%d contacts across %d companies\n", sum.TotalContacts, sum.Companies)

			statuses := make([]string, 0, len(sum.ByStatus))
			for status := range sum.ByStatus {
				statuses = append(statuses, status)
			}
			sort.Strings(statuses)
			for _, status := range statuses {
				fmt.Fprintf(os.Stdout, "  %s: %d\n", status, sum.ByStatus[status])
			}
			return nil
		},
	}
}
