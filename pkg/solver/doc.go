// Package solver reconciles a sketch's relations into a consistent
// configuration.
//
// Every live element contributes free scalar parameters (3 for a point, 6
// for a line, 6 for an arc) unless a Fixed relation pins it. An arc is held
// as center, radius and two endpoint angles in its own plane, so its
// endpoints stay on the circle without extra equations. Each relation adds
// one or more scalar equations.
// Degrees of freedom are the free parameter count minus the rank of the
// equation Jacobian.
//
// Solving is a damped least-squares (Levenberg–Marquardt) iteration on a
// finite-difference Jacobian. A solve either succeeds and writes every
// element back, or fails and leaves the sketch untouched.
package solver
