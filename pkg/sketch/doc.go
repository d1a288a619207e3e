// Package sketch holds the constrained 2D drawing model: a plane, an arena
// of elements (points, lines, arcs) and an arena of relations that refer to
// elements by stable index.
//
// Elements are mutable; the solver overwrites their parameters in place.
// Relations are immutable once added. Every structural edit (adding or
// removing an element or relation) bumps the sketch revision so compiled
// solver state can detect that it is stale.
package sketch
