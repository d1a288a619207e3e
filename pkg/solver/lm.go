package solver

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Damping schedule for the Levenberg–Marquardt loop.
const (
	lambdaInit  = 1e-3
	lambdaMin   = 1e-10
	lambdaMax   = 1e16
	stallLimit  = 3     // consecutive negligible decreases before giving up
	stallFactor = 1e-12 // relative cost decrease treated as negligible
)

// problem is one solve attempt: a fixed set of equations over the free
// entries of a layout's value vector.
type problem struct {
	layout *layout
	free   []int // indices into layout.values
	eqs    []equation
	rows   int
}

type runStatus int

const (
	converged  runStatus = iota
	stationary           // no further decrease possible above tolerance
	exhausted            // iteration budget spent
)

func (s runStatus) String() string {
	switch s {
	case converged:
		return "converged"
	case stationary:
		return "stationary"
	default:
		return "exhausted"
	}
}

// outcome is the end state of one run.
type outcome struct {
	status     runStatus
	x          []float64 // free parameters
	residual   float64
	iterations int
}

func (p *problem) initial() []float64 {
	x := make([]float64, len(p.free))
	for i, j := range p.free {
		x[i] = p.layout.values[j]
	}
	return x
}

// expand writes free parameters x into a copy of the full value vector.
func (p *problem) expand(x []float64) []float64 {
	vals := make([]float64, len(p.layout.values))
	copy(vals, p.layout.values)
	for i, j := range p.free {
		vals[j] = x[i]
	}
	return vals
}

func (p *problem) residual(x, out []float64) {
	vals := p.expand(x)
	row := 0
	for _, eq := range p.eqs {
		eq.eval(vals, out[row:row+eq.rows])
		row += eq.rows
	}
}

// jacobian approximates ∂r/∂x with central differences.
func (p *problem) jacobian(x []float64) *mat.Dense {
	m, n := p.rows, len(x)
	J := mat.NewDense(m, n, nil)
	plus := make([]float64, m)
	minus := make([]float64, m)
	xt := make([]float64, n)
	copy(xt, x)
	for j := 0; j < n; j++ {
		h := 1e-6 * math.Max(1, math.Abs(x[j]))
		xt[j] = x[j] + h
		p.residual(xt, plus)
		xt[j] = x[j] - h
		p.residual(xt, minus)
		xt[j] = x[j]
		for i := 0; i < m; i++ {
			J.Set(i, j, (plus[i]-minus[i])/(2*h))
		}
	}
	return J
}

// rank returns the numerical rank of the Jacobian at x.
func (p *problem) rank(x []float64) int {
	if p.rows == 0 || len(x) == 0 {
		return 0
	}
	var svd mat.SVD
	if !svd.Factorize(p.jacobian(x), mat.SVDNone) {
		return 0
	}
	vals := svd.Values(nil)
	if len(vals) == 0 {
		return 0
	}
	cutoff := 1e-8 * math.Max(1, vals[0])
	r := 0
	for _, s := range vals {
		if s > cutoff {
			r++
		}
	}
	return r
}

// run iterates from the layout's current values until the residual norm
// drops below opts.Tolerance, no further progress is possible, or the
// budget runs out.
func (p *problem) run(opts Options) outcome {
	x := p.initial()
	r := make([]float64, p.rows)
	p.residual(x, r)
	norm := floats.Norm(r, 2)

	if len(x) == 0 {
		if norm <= opts.Tolerance {
			return outcome{status: converged, x: x, residual: norm}
		}
		return outcome{status: stationary, x: x, residual: norm}
	}

	var (
		lambda = lambdaInit
		stalls int
		rt     = make([]float64, p.rows)
		xt     = make([]float64, len(x))
	)
	for iter := 0; ; iter++ {
		if norm <= opts.Tolerance {
			return outcome{status: converged, x: x, residual: norm, iterations: iter}
		}
		if iter >= opts.MaxIterations {
			return outcome{status: exhausted, x: x, residual: norm, iterations: iter}
		}

		J := p.jacobian(x)
		var JtJ mat.SymDense
		JtJ.SymOuterK(1, J.T())
		var g mat.VecDense
		g.MulVec(J.T(), mat.NewVecDense(len(r), r))

		for {
			step, ok := dampedStep(&JtJ, &g, lambda)
			if ok {
				if sn := floats.Norm(step, 2); sn > opts.MaxStep {
					floats.Scale(opts.MaxStep/sn, step)
				}
				if floats.Norm(step, 2) <= 1e-15*(1+floats.Norm(x, 2)) {
					return outcome{status: stationary, x: x, residual: norm, iterations: iter}
				}
				floats.AddTo(xt, x, step)
				p.residual(xt, rt)
				if nt := floats.Norm(rt, 2); nt < norm {
					if norm*norm-nt*nt <= stallFactor*norm*norm {
						stalls++
					} else {
						stalls = 0
					}
					x, xt = xt, x
					r, rt = rt, r
					norm = nt
					lambda = math.Max(lambda/10, lambdaMin)
					break
				}
			}
			lambda *= 10
			if lambda > lambdaMax {
				return outcome{status: stationary, x: x, residual: norm, iterations: iter}
			}
		}
		if opts.Logger != nil {
			opts.Logger.Debug("solver step", slog.Int("iter", iter), slog.Float64("residual", norm), slog.Float64("lambda", lambda))
		}
		if stalls >= stallLimit && norm > opts.Tolerance {
			return outcome{status: stationary, x: x, residual: norm, iterations: iter + 1}
		}
	}
}

// dampedStep solves (JᵀJ + λI)δ = −Jᵀr. It reports false when the damped
// matrix is not positive definite.
func dampedStep(JtJ *mat.SymDense, g *mat.VecDense, lambda float64) ([]float64, bool) {
	n := JtJ.SymmetricDim()
	A := mat.NewSymDense(n, nil)
	A.CopySym(JtJ)
	for i := 0; i < n; i++ {
		A.SetSym(i, i, A.At(i, i)+lambda)
	}
	var chol mat.Cholesky
	if !chol.Factorize(A) {
		return nil, false
	}
	neg := mat.NewVecDense(n, nil)
	neg.ScaleVec(-1, g)
	var d mat.VecDense
	if err := chol.SolveVecTo(&d, neg); err != nil {
		return nil, false
	}
	step := make([]float64, n)
	for i := range step {
		step[i] = d.AtVec(i)
	}
	return step, true
}

// displacement measures how far x moved from the problem's start.
func (p *problem) displacement(x []float64) float64 {
	return floats.Distance(x, p.initial(), 2)
}
