// Package engine provides the Lisp authoring front-end for sketches.
// It wraps zygomys in a sandboxed environment and produces a Program (a
// sketch plus the boundary loops it declares) from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/contour/pkg/boundary"
	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a validation finding on the evaluated sketch that does
// not prevent solving.
type EvalWarning struct {
	Message  string
	Element  sketch.ElementID
	Relation sketch.RelationID
}

// Program is the output of a successful evaluation.
type Program struct {
	Sketch   *sketch.Sketch
	Loops    [][]sketch.ElementID // element order of each declared boundary loop
	Warnings []EvalWarning
}

// LoopElements converts loop i into boundary elements using the sketch's
// current geometry, so a loop built after solving sees solved positions.
func (p *Program) LoopElements(i int) ([]boundary.Element, error) {
	if i < 0 || i >= len(p.Loops) {
		return nil, &geom.InvalidArgumentError{Op: "loop elements", Arg: "loop index", Reason: fmt.Sprintf("%d is out of range [0, %d)", i, len(p.Loops))}
	}
	out := make([]boundary.Element, 0, len(p.Loops[i]))
	for _, id := range p.Loops[i] {
		e, ok := p.Sketch.Element(id)
		if !ok {
			return nil, &sketch.InvalidElementReferenceError{Op: "boundary-loop", Arg: -1, Element: id, Reason: "element was removed"}
		}
		switch e := e.(type) {
		case sketch.LineElement:
			out = append(out, boundary.LineEdge{Line: e.Line})
		case sketch.ArcElement:
			out = append(out, boundary.ArcEdge{Arc: e.Arc})
		default:
			return nil, &sketch.InvalidElementReferenceError{Op: "boundary-loop", Arg: -1, Element: id, Reason: "points cannot bound a loop"}
		}
	}
	return out, nil
}

// Engine wraps the zygomys interpreter for sketch evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and produces a new Program.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns program + nil errors + nil error
//   - On parse/eval failure: returns nil program + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Program, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{program: p, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Program, []EvalError, error) {
	b := newBuilder()

	// Empty source is a valid program that produces an empty sketch.
	if strings.TrimSpace(source) == "" {
		return b.program(), nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	// Load and compile the source string into bytecode.
	err := env.LoadString(preprocessSource(source))
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	// Execute the compiled bytecode.
	_, err = env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	p := b.program()
	vr := sketch.Validate(p.Sketch)
	if !vr.OK() {
		evalErrs := make([]EvalError, len(vr.Errors))
		for i, f := range vr.Errors {
			evalErrs[i] = EvalError{Message: f.Error()}
		}
		return nil, evalErrs, nil
	}
	for _, f := range vr.Warnings {
		p.Warnings = append(p.Warnings, EvalWarning{Message: f.Message, Element: f.Element, Relation: f.Relation})
	}
	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// Try to extract line numbers from the error message.
	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
