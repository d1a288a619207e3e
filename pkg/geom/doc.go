// Package geom is the primitive algebra of the contour kernel: points,
// planes, circles, arcs and lines, the conversions between equivalent line
// representations, projection onto planes, and arc tessellation.
//
// Points and vectors are sdfx v3.Vec values, so geometry produced here feeds
// straight into sdf matrices and bounding boxes. Every operation is a pure
// function of its arguments; nothing in this package holds state.
package geom
