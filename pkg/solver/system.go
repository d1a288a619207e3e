package solver

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/chazu/contour/pkg/sketch"
	"github.com/samber/lo"
)

// maxTangentCombos bounds exhaustive arc-arc tangency enumeration to
// 2^4 configurations. Above it each tangency keeps the configuration
// closest to being satisfied by the initial guess.
const maxTangentCombos = 4

// maxDiagnosed bounds the deletion filter. Larger over-constrained systems
// report the whole relation list.
const maxDiagnosed = 32

// System is a sketch compiled into a parameter layout and a relation list.
// It is bound to the sketch revision it was compiled from.
type System struct {
	sketch    *sketch.Sketch
	revision  uint64
	opts      Options
	relations []sketch.RelationID
	rels      []sketch.Relation
}

// Compile validates s and captures its structure. Validation errors (not
// warnings) fail the compile.
func Compile(s *sketch.Sketch, opts Options) (*System, error) {
	if res := sketch.Validate(s); !res.OK() {
		return nil, fmt.Errorf("solver: invalid sketch: %w", res.Errors[0])
	}
	sys := &System{
		sketch:    s,
		revision:  s.Revision(),
		opts:      opts.withDefaults(),
		relations: s.Relations(),
	}
	for _, rid := range sys.relations {
		r, _ := s.Relation(rid)
		sys.rels = append(sys.rels, r)
	}
	return sys, nil
}

// Solve compiles s and solves it once.
func Solve(s *sketch.Sketch, opts Options) (Result, error) {
	sys, err := Compile(s, opts)
	if err != nil {
		return Result{}, err
	}
	return sys.Solve()
}

// Solve reconciles the sketch's relations starting from the elements'
// current parameters. On success every changed element is rewritten; on
// failure the sketch is left exactly as it was.
func (sys *System) Solve() (Result, error) {
	if sys.sketch.Revision() != sys.revision {
		return Result{}, ErrStaleSystem
	}
	lay, err := newLayout(sys.sketch)
	if err != nil {
		return Result{}, err
	}

	all := lo.Range(len(sys.rels))
	p, out, err := sys.solveSubset(lay, all)
	if err != nil {
		return Result{}, err
	}
	log := sys.opts.Logger

	switch out.status {
	case stationary:
		ids, minimal := sys.conflicts(lay, all)
		if log != nil {
			log.Debug("solver over-constrained", slog.Any("relations", ids), slog.Float64("residual", out.residual))
		}
		return Result{}, &OverConstrainedError{Relations: ids, Residual: out.residual, Minimal: minimal}
	case exhausted:
		return Result{}, &SolverDivergedError{Iterations: out.iterations, Residual: out.residual}
	}

	res := Result{
		Params:     len(p.free),
		Equations:  p.rows,
		Iterations: out.iterations,
		Residual:   out.residual,
	}
	res.Rank = p.rank(out.x)
	res.DOF = res.Params - res.Rank
	res.Status = lo.Ternary(res.DOF == 0, WellConstrained, UnderConstrained)

	changed, err := sys.apply(lay, p.expand(out.x))
	if err != nil {
		return Result{}, err
	}
	res.Changed = changed
	if log != nil {
		log.Debug("solver done", slog.String("status", res.Status.String()), slog.Int("dof", res.DOF), slog.Int("iterations", res.Iterations), slog.Float64("residual", res.Residual))
	}
	return res, nil
}

// build assembles the problem for a subset of relations (indices into
// sys.rels) with the given arc-arc tangency choices.
func (sys *System) build(lay *layout, subset []int, modes map[int]tangency) (*problem, error) {
	pinned := make(map[sketch.ElementID]bool)
	for _, i := range subset {
		if sys.rels[i].Kind == sketch.Fixed {
			pinned[sys.rels[i].Elements[0]] = true
		}
	}

	p := &problem{layout: lay}
	for _, sl := range lay.slots {
		if pinned[sl.id] {
			continue
		}
		for k := 0; k < sl.size; k++ {
			p.free = append(p.free, sl.off+k)
		}
	}
	for _, i := range subset {
		eq, err := lay.relationEquation(sys.relations[i], sys.rels[i], modes[i])
		if err != nil {
			return nil, err
		}
		if eq.rows > 0 {
			p.eqs = append(p.eqs, eq)
		}
	}
	p.rows = lo.SumBy(p.eqs, func(eq equation) int { return eq.rows })
	return p, nil
}

// isArcTangency reports whether relation i is a tangent between two arcs.
func (sys *System) isArcTangency(lay *layout, i int) bool {
	r := sys.rels[i]
	return r.Kind == sketch.Tangent && lay.slotOf(r.Elements[1]).kind == sketch.KindArc
}

// solveSubset solves a relation subset. Arc-arc tangencies are tried in
// every internal/external combination when there are few of them, and the
// converged combination with the smallest parameter displacement wins.
// Otherwise, or when no combination converges, each tangency uses the
// configuration nearest to the initial guess.
func (sys *System) solveSubset(lay *layout, subset []int) (*problem, outcome, error) {
	tangents := lo.Filter(subset, func(i int, _ int) bool { return sys.isArcTangency(lay, i) })
	nearest := make(map[int]tangency, len(tangents))
	for _, i := range tangents {
		nearest[i] = lay.tangencyOf(sys.rels[i], lay.values)
	}

	runWith := func(modes map[int]tangency) (*problem, outcome, error) {
		p, err := sys.build(lay, subset, modes)
		if err != nil {
			return nil, outcome{}, err
		}
		return p, p.run(sys.opts), nil
	}

	if len(tangents) == 0 || len(tangents) > maxTangentCombos {
		return runWith(nearest)
	}

	var (
		bestP    *problem
		bestOut  outcome
		bestDisp = math.Inf(1)
	)
	for mask := 0; mask < 1<<len(tangents); mask++ {
		modes := make(map[int]tangency, len(tangents))
		for bit, i := range tangents {
			modes[i] = lo.Ternary(mask&(1<<bit) != 0, internal, external)
		}
		p, out, err := runWith(modes)
		if err != nil {
			return nil, outcome{}, err
		}
		if out.status != converged {
			continue
		}
		if d := p.displacement(out.x); d < bestDisp {
			bestP, bestOut, bestDisp = p, out, d
		}
	}
	if bestP != nil {
		return bestP, bestOut, nil
	}
	return runWith(nearest)
}

// conflicts shrinks an inconsistent relation subset with a deletion filter:
// a relation is dropped whenever the rest is still inconsistent without it.
// What remains is a minimal conflicting set. It reports false when the set
// was too large to diagnose and the full list is returned instead.
func (sys *System) conflicts(lay *layout, subset []int) ([]sketch.RelationID, bool) {
	ids := func(set []int) []sketch.RelationID {
		return lo.Map(set, func(i int, _ int) sketch.RelationID { return sys.relations[i] })
	}
	if len(subset) > maxDiagnosed {
		return ids(subset), false
	}
	core := slices.Clone(subset)
	for k := 0; k < len(core); {
		trial := slices.Delete(slices.Clone(core), k, k+1)
		_, out, err := sys.solveSubset(lay, trial)
		if err == nil && out.status == stationary {
			core = trial
			continue
		}
		k++
	}
	return ids(core), true
}

// apply writes the solved values back. Every element is rebuilt before any
// is written, so a degenerate result leaves the sketch untouched.
func (sys *System) apply(lay *layout, vals []float64) ([]sketch.ElementID, error) {
	type update struct {
		id sketch.ElementID
		e  sketch.Element
	}
	var updates []update
	for _, sl := range lay.slots {
		if slices.Equal(vals[sl.off:sl.off+sl.size], lay.values[sl.off:sl.off+sl.size]) {
			continue
		}
		e, err := lay.element(sl, vals)
		if err != nil {
			return nil, fmt.Errorf("solver: solution degenerates element %d: %w", sl.id, err)
		}
		updates = append(updates, update{id: sl.id, e: e})
	}
	changed := make([]sketch.ElementID, 0, len(updates))
	for _, u := range updates {
		if err := sys.sketch.SetElement(u.id, u.e); err != nil {
			return nil, err
		}
		changed = append(changed, u.id)
	}
	return changed, nil
}
