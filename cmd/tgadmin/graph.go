package main

import (
	"fmt"

	"github.com/aretw0/tgadmin/internal/presentation/graph"
	"github.com/aretw0/tgadmin/internal/tree"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file> [address]",
	Short: "Export the document tree as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph LR) of the menus the bot offers for <file>, optionally highlighting [address].`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := tree.Load(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if len(args) > 1 {
			addr, err := domain.ParsePath(args[1])
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{Current: addr}
		}

		return doc.View(func(root domain.Value) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(root, overlay))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
