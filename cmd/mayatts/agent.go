package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-maya-tts/internal/agent"
	"github.com/example/go-maya-tts/internal/crm"
	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect voice agent personas",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentBriefCmd())

	return cmd
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agent personas",
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, p := range agent.List() {
				_, err := fmt.Fprintf(os.Stdout, "%s\t%s\t(voice %s)\n", p.Name, p.Title, p.Voice)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAgentBriefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief <persona>",
		Short: "Print a persona's instructions with the current CRM briefing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			persona, err := agent.Lookup(args[0])
			if err != nil {
				return err
			}

			summary := crm.Summary{}
			if cfg.CRM.DatabasePath != "" {
				store, err := crm.Open(cmd.Context(), cfg.CRM, slog.Default())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				summary, err = store.Summarize(cmd.Context())
				if err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(os.Stdout, agent.BuildInstructions(persona, summary))
			return err
		},
	}

	return cmd
}
