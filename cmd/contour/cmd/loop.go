package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/contour/pkg/boundary"
)

var (
	loopIndex int
	clockwise bool
)

var loopCmd = &cobra.Command{
	Use:   "loop <script>",
	Short: "Assemble and validate a boundary loop declared by a script",
	Long: `Evaluate and solve a sketch script, then assemble one of its
(boundary-loop ...) declarations into a closed, oriented loop. The loop is
oriented about the sketch plane normal.

Examples:
  contour loop bracket.contour
  contour loop --index 1 --cw bracket.contour`,
	Args: cobra.ExactArgs(1),
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(loopCmd)

	loopCmd.Flags().IntVarP(&loopIndex, "index", "i", 0,
		"which declared loop to assemble")
	loopCmd.Flags().BoolVar(&clockwise, "cw", false,
		"orient the loop clockwise instead of counter-clockwise")
	loopCmd.Flags().BoolVar(&skipSolve, "no-solve", false,
		"assemble the loop from the sketch as written, without solving")
}

func runLoop(cmd *cobra.Command, args []string) error {
	k, p, err := setup(args[0])
	if err != nil {
		return err
	}
	if !skipSolve {
		if _, err := k.Solve(p.Sketch); err != nil {
			return fmt.Errorf("failed to solve: %w", err)
		}
	}

	elems, err := p.LoopElements(loopIndex)
	if err != nil {
		return fmt.Errorf("failed to read loop: %w", err)
	}
	w := boundary.CounterClockwise
	if clockwise {
		w = boundary.Clockwise
	}
	loop, err := k.AssembleLoop(elems, p.Sketch.Plane().Normal(), w)
	if err != nil {
		return fmt.Errorf("failed to assemble loop %d: %w", loopIndex, err)
	}
	segs, err := k.TessellateLoop(loop)
	if err != nil {
		return fmt.Errorf("failed to tessellate loop: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), viewLoop(loop, segs))
}
