package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pipeview/internal/presentation/graph"
)

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Manage persisted stage colors",
}

var colorsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stage colors of a project and assign new ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireProject(); err != nil {
			return err
		}

		ctx := contextOf(cmd)
		sess, err := a.viewer.Pipeline(ctx, a.project)
		if err != nil {
			return err
		}
		if err := sess.ReassignColors(ctx); err != nil {
			return err
		}
		fmt.Printf("Stage colors of %s reassigned\n", a.project)
		return graph.WriteText(os.Stdout, sess.Topology(), outputProfile())
	},
}

var hideSubscriptionsCmd = &cobra.Command{
	Use:   "toggle-subscriptions",
	Short: "Toggle whether warehouse subscription edges are drawn",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireProject(); err != nil {
			return err
		}

		ctx := contextOf(cmd)
		sess, err := a.viewer.Pipeline(ctx, a.project)
		if err != nil {
			return err
		}
		hide, err := sess.ToggleHideSubscriptions(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Subscription edges of %s hidden: %t\n", a.project, hide)
		return nil
	},
}

func init() {
	colorsCmd.AddCommand(colorsResetCmd)
	rootCmd.AddCommand(colorsCmd)
	rootCmd.AddCommand(hideSubscriptionsCmd)
}
