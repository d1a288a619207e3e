// Package boundary assembles lines, arcs and polygons into closed, simple,
// consistently wound loops that can bound a surface.
//
// Assemble flattens nested polygons into primitive edges and then checks,
// in order: continuity between consecutive edges, closure of the last edge
// onto the first, planarity, simplicity (no two non-adjacent edges touch)
// and winding. A loop wound against the requested sense is reversed as a
// whole.
package boundary
