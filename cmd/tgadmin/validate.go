package main

import (
	"fmt"

	"github.com/aretw0/tgadmin/internal/tree"
	"github.com/aretw0/tgadmin/internal/validator"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a file can be managed from chat",
	Long: `Parses <file> and reports entries the bot cannot offer: addresses too long
for a button, arrays mixing element kinds, arrays of containers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		doc, err := tree.Load(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		return doc.View(func(root domain.Value) error {
			for _, issue := range validator.ValidateDocument(root) {
				fmt.Fprintln(out, issue)
			}
			if err := validator.ValidateTree(root, strict); err != nil {
				return err
			}
			fmt.Fprintln(out, "Document is valid! ✅")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail on warnings too")
}
