package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/contour/pkg/geom"
	"github.com/chazu/contour/pkg/sketch"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms sketch Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: sketch-plane -> sketch_plane
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a geom.Vec.
type sexpVec3 struct {
	vec geom.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpElementRef wraps a sketch element so relations can name it.
type sexpElementRef struct {
	id   sketch.ElementID
	kind sketch.ElementKind
}

func (r *sexpElementRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %d)", r.kind, r.id)
}
func (r *sexpElementRef) Type() *zygo.RegisteredType { return nil }

// sexpRelationRef wraps a sketch relation.
type sexpRelationRef struct {
	id  sketch.RelationID
	rel sketch.Relation
}

func (r *sexpRelationRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(relation %d %s)", r.id, r.rel)
}
func (r *sexpRelationRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value is a flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_xy) and plain strings ("xy").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toPlane converts :xy, :xz or :yz to a canonical plane.
func toPlane(s zygo.Sexp) (geom.Plane, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return geom.Plane{}, fmt.Errorf("expected plane keyword (:xy, :xz, :yz): %w", err)
	}
	switch name {
	case "xy":
		return geom.XY, nil
	case "xz":
		return geom.XZ, nil
	case "yz":
		return geom.YZ, nil
	}
	return geom.Plane{}, fmt.Errorf("invalid plane %q, expected xy, xz, or yz", name)
}

// toDirection converts :cw or :ccw to an arc direction.
func toDirection(s zygo.Sexp) (geom.ArcDirection, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected direction keyword (:cw, :ccw): %w", err)
	}
	switch name {
	case "cw":
		return geom.Clockwise, nil
	case "ccw":
		return geom.CounterClockwise, nil
	}
	return 0, fmt.Errorf("invalid direction %q, expected cw or ccw", name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPoint accepts either a single vec3 or three numbers.
func toPoint(args []zygo.Sexp) (geom.Point, error) {
	switch len(args) {
	case 1:
		return toVec3(args[0])
	case 3:
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return geom.Point{}, fmt.Errorf("coordinate %d: %w", i, err)
			}
			c[i] = f
		}
		return geom.Point{X: c[0], Y: c[1], Z: c[2]}, nil
	}
	return geom.Point{}, fmt.Errorf("expected a vec3 or 3 numbers, got %d arguments", len(args))
}

// toElementRef extracts an element reference.
func toElementRef(s zygo.Sexp) (*sexpElementRef, error) {
	if r, ok := s.(*sexpElementRef); ok {
		return r, nil
	}
	return nil, fmt.Errorf("expected element reference, got %T (%s)", s, s.SexpString(nil))
}

// requireVec3 reads a mandatory keyword vector argument.
func requireVec3(pa kwArgs, op, key string) (geom.Vec, error) {
	v, ok := pa.kw[key]
	if !ok {
		return geom.Vec{}, fmt.Errorf("%s: missing :%s", op, key)
	}
	vec, err := toVec3(v)
	if err != nil {
		return geom.Vec{}, fmt.Errorf("%s: %s: %w", op, key, err)
	}
	return vec, nil
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// builder accumulates the sketch and declared loops during one evaluation.
type builder struct {
	sketch *sketch.Sketch
	loops  [][]sketch.ElementID
}

func newBuilder() *builder {
	return &builder{sketch: sketch.New("sketch", geom.XY)}
}

func (b *builder) program() *Program {
	return &Program{Sketch: b.sketch, Loops: b.loops}
}

// reset replaces the sketch before any geometry has been added.
func (b *builder) reset(op, name string, plane geom.Plane) error {
	if b.sketch.ElementCount() > 0 {
		return fmt.Errorf("%s must come before any element", op)
	}
	b.sketch = sketch.New(name, plane)
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all sketch DSL builtins into a zygomys
// environment. The builtins populate b during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (sketch-name "bracket")
	// -----------------------------------------------------------------------
	env.AddFunction("sketch_name", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sketch-name requires exactly 1 argument, got %d", len(args))
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sketch-name: %w", err)
		}
		b.sketch.Name = n
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (sketch-plane :xz)
	// (sketch-plane :normal (vec3 0 0 1) :center (vec3 0 0 5))
	// -----------------------------------------------------------------------
	env.AddFunction("sketch_plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var plane geom.Plane
		switch {
		case len(pa.positional) == 1:
			p, err := toPlane(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch-plane: %w", err)
			}
			plane = p
		case len(pa.positional) == 0:
			normal, err := requireVec3(pa, "sketch-plane", "normal")
			if err != nil {
				return zygo.SexpNull, err
			}
			var center geom.Point
			if v, ok := pa.kw["center"]; ok {
				if center, err = toVec3(v); err != nil {
					return zygo.SexpNull, fmt.Errorf("sketch-plane: center: %w", err)
				}
			}
			if plane, err = geom.NewPlane(normal, center); err != nil {
				return zygo.SexpNull, fmt.Errorf("sketch-plane: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("sketch-plane takes one plane keyword or :normal/:center")
		}

		if err := b.reset("sketch-plane", b.sketch.Name, plane); err != nil {
			return zygo.SexpNull, err
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		p, err := toPoint(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: p}, nil
	})

	// -----------------------------------------------------------------------
	// (point 1 2 0) or (point (vec3 1 2 0))
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toPoint(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		id, err := b.sketch.AddPoint(p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		return &sexpElementRef{id: id, kind: sketch.KindPoint}, nil
	})

	// -----------------------------------------------------------------------
	// (line (vec3 0 0 0) (vec3 1 0 0))
	// (line :origin (vec3 0 0 0) :direction (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var l geom.Line
		switch len(pa.positional) {
		case 2:
			a, err := toVec3(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("line: from: %w", err)
			}
			bp, err := toVec3(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("line: to: %w", err)
			}
			l = geom.TwoPointLine{A: a, B: bp}
		case 0:
			origin, err := requireVec3(pa, "line", "origin")
			if err != nil {
				return zygo.SexpNull, err
			}
			dir, err := requireVec3(pa, "line", "direction")
			if err != nil {
				return zygo.SexpNull, err
			}
			if l, err = geom.NewParametricLine(origin, dir); err != nil {
				return zygo.SexpNull, fmt.Errorf("line: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("line takes two vec3 endpoints or :origin/:direction")
		}

		id, err := b.sketch.AddLine(l)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return &sexpElementRef{id: id, kind: sketch.KindLine}, nil
	})

	// -----------------------------------------------------------------------
	// (arc :center (vec3 0 0 0) :start (vec3 1 0 0) :end (vec3 0 1 0)
	//      :direction :ccw)
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		center, err := requireVec3(pa, "arc", "center")
		if err != nil {
			return zygo.SexpNull, err
		}
		start, err := requireVec3(pa, "arc", "start")
		if err != nil {
			return zygo.SexpNull, err
		}
		end, err := requireVec3(pa, "arc", "end")
		if err != nil {
			return zygo.SexpNull, err
		}
		dir := geom.CounterClockwise
		if v, ok := pa.kw["direction"]; ok {
			if dir, err = toDirection(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: direction: %w", err)
			}
		}

		id, err := b.sketch.AddArc(center, start, end, dir)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		return &sexpElementRef{id: id, kind: sketch.KindArc}, nil
	})

	// -----------------------------------------------------------------------
	// (horizontal l) (coincident p l) (tangent c l) ... (fixed p)
	//
	// One builtin per relation kind, named after the kind.
	// -----------------------------------------------------------------------
	for kind := sketch.Horizontal; kind <= sketch.Fixed; kind++ {
		op := kind.String()
		env.AddFunction(strings.ReplaceAll(op, "-", "_"), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			ids := make([]sketch.ElementID, len(args))
			for i, a := range args {
				ref, err := toElementRef(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", op, i, err)
				}
				ids[i] = ref.id
			}
			id, err := b.sketch.AddRelation(kind, ids...)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpRelationRef{id: id, rel: sketch.Relation{Kind: kind, Elements: ids}}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (boundary-loop l1 l2 c1 l3)
	// -----------------------------------------------------------------------
	env.AddFunction("boundary_loop", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("boundary-loop requires at least one line or arc")
		}
		ids := make([]sketch.ElementID, len(args))
		for i, a := range args {
			ref, err := toElementRef(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("boundary-loop: argument %d: %w", i, err)
			}
			if ref.kind == sketch.KindPoint {
				return zygo.SexpNull, fmt.Errorf("boundary-loop: argument %d: points cannot bound a loop", i)
			}
			ids[i] = ref.id
		}
		b.loops = append(b.loops, ids)
		return zygo.SexpNull, nil
	})
}
