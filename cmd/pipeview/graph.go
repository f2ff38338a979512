package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pipeview/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the pipeline topology",
	Long:  `Builds the pipeline of a project and prints it as a stage list (text) or a Mermaid flowchart (mermaid).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.requireProject(); err != nil {
			return err
		}

		sess, err := a.viewer.Pipeline(contextOf(cmd), a.project)
		if err != nil {
			return err
		}
		res := sess.Topology()

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(res, nil))
			return nil
		case "text":
			return graph.WriteText(os.Stdout, res, outputProfile())
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "text", "Output format: text or mermaid")
}
