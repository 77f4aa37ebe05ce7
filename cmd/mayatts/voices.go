package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/example/go-maya-tts/internal/tts"
	"github.com/spf13/cobra"
)

func newVoicesCmd() *cobra.Command {
	var showDescriptors bool

	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available voice presets",
		RunE: func(_ *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, p := range tts.ListVoicePresets() {
				if showDescriptors {
					fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Descriptor)
				} else {
					fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showDescriptors, "descriptors", false, "Show the full voice descriptors")

	return cmd
}
