package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/pipeview/internal/presentation/tui"
)

var promotionsCmd = &cobra.Command{
	Use:   "promotions <stage>",
	Short: "List the promotions of a stage",
	Long:  `Prints the promotions of a stage, active first then newest first, flagging pending abort requests.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireProject(); err != nil {
			return err
		}

		view, err := a.viewer.Promotions(contextOf(cmd), a.project, args[0])
		if err != nil {
			return err
		}

		render, err := tui.NewRenderer(outputProfileIsPlain())
		if err != nil {
			return err
		}
		out, err := render(tui.PromotionsMarkdown(args[0], view.Rows()))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promotionsCmd)
}
