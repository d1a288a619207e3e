// Command contour evaluates sketch scripts, solves their relations and
// emits tessellated geometry or validated boundary loops as JSON.
package main

import "github.com/chazu/contour/cmd/contour/cmd"

func main() {
	cmd.Execute()
}
