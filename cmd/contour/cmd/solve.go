package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve <script>",
	Short: "Solve a sketch and print its reconciled elements",
	Long: `Evaluate a sketch script, reconcile its relations and print the solve
report (status, degrees of freedom, residual) with the solved elements.

An over-constrained sketch fails and names the conflicting relations.

Examples:
  contour solve bracket.contour
  contour -v solve bracket.contour`,
	Args: cobra.ExactArgs(1),
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	k, p, err := setup(args[0])
	if err != nil {
		return err
	}
	res, err := k.Solve(p.Sketch)
	if err != nil {
		return fmt.Errorf("failed to solve: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), viewSolve(p.Sketch, res))
}
