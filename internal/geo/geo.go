// Package geo projects hex cells onto the plane so journals can store
// positions and routes as geometry.
//
// Cells are flat-topped. Column 0 row 0 sits at the origin, x grows with the
// column and y grows with the row (southward), so map rows read top to bottom
// the same way they do in a text map.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/hexfront/tactics/pkg/hex"
	geom "github.com/peterstace/simplefeatures/geom"
)

// DefaultSize is the center-to-corner radius used by the journals.
const DefaultSize = 1.0

// ErrShortRoute is returned when a route has fewer than two cells.
var ErrShortRoute = errors.New("route must have at least 2 cells")

// CenterXY returns the planar center of pos for cells of the given size.
func CenterXY(pos hex.Position, size float64) geom.XY {
	q, r := float64(pos.X), float64(pos.Z)
	return geom.XY{
		X: size * 1.5 * q,
		Y: size * math.Sqrt(3) * (r + q/2),
	}
}

// Center returns the center of pos as a 2D point.
func Center(pos hex.Position, size float64) (geom.Point, error) {
	point, err := geom.NewPoint(geom.Coordinates{
		XY:   CenterXY(pos, size),
		Type: geom.DimXY,
	})
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid center for %s: %w", pos, err)
	}
	return point, nil
}

// Route returns the line through the centers of path.
func Route(path []hex.Position, size float64) (geom.LineString, error) {
	if len(path) < 2 {
		return geom.LineString{}, fmt.Errorf("%w, got %d", ErrShortRoute, len(path))
	}
	flat := make([]float64, 0, len(path)*2)
	for _, pos := range path {
		xy := CenterXY(pos, size)
		flat = append(flat, xy.X, xy.Y)
	}
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("invalid route: %w", err)
	}
	return ls, nil
}

// Nearest returns the cell whose center is closest to xy.
func Nearest(xy geom.XY, size float64) hex.Position {
	q := (2.0 / 3.0 * xy.X) / size
	r := (-1.0/3.0*xy.X + math.Sqrt(3)/3*xy.Y) / size
	return round(q, -q-r, r)
}

// round snaps fractional cube coordinates to the nearest cell.
func round(x, y, z float64) hex.Position {
	rx, ry, rz := math.Round(x), math.Round(y), math.Round(z)
	dx, dy, dz := math.Abs(rx-x), math.Abs(ry-y), math.Abs(rz-z)
	switch {
	case dx > dy && dx > dz:
		rx = -ry - rz
	case dy > dz:
		ry = -rx - rz
	default:
		rz = -rx - ry
	}
	return hex.New(int(rx), int(ry), int(rz))
}
