package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	skipSolve bool
	ribbon    bool
)

var tessellateCmd = &cobra.Command{
	Use:   "tessellate <script>",
	Short: "Flatten a sketch into straight segments",
	Long: `Evaluate and solve a sketch script, then print its tessellated segment
stream, or a ribbon triangle mesh with --ribbon.

Examples:
  contour tessellate bracket.contour
  contour tessellate --no-solve bracket.contour
  contour tessellate --ribbon bracket.contour`,
	Args: cobra.ExactArgs(1),
	RunE: runTessellate,
}

func init() {
	rootCmd.AddCommand(tessellateCmd)

	tessellateCmd.Flags().BoolVar(&skipSolve, "no-solve", false,
		"tessellate the sketch as written, without solving")
	tessellateCmd.Flags().BoolVarP(&ribbon, "ribbon", "r", false,
		"emit a ribbon mesh instead of segments")
}

func runTessellate(cmd *cobra.Command, args []string) error {
	k, p, err := setup(args[0])
	if err != nil {
		return err
	}
	if !skipSolve {
		if _, err := k.Solve(p.Sketch); err != nil {
			return fmt.Errorf("failed to solve: %w", err)
		}
	}

	if ribbon {
		m, err := k.Ribbon(p.Sketch)
		if err != nil {
			return fmt.Errorf("failed to build ribbon: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), m)
	}

	segs, err := k.Tessellate(p.Sketch)
	if err != nil {
		return fmt.Errorf("failed to tessellate: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), viewSegments(segs))
}
