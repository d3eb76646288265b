// geo/rect.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import "fmt"

// Rect is an axis-aligned latitude/longitude rectangle, stored as its
// top-left and bottom-right corners. A Rect whose corners are invalid is
// itself invalid; a Rect may be a single point; the east edge may be
// numerically less than the west edge, in which case the rectangle crosses
// the antimeridian and spatially covers [west, 180] plus [-180, east].
type Rect struct {
	TopLeft, BottomRight Pos
}

// EmptyRect returns an invalid Rect; Extend grows it from there.
func EmptyRect() Rect {
	return Rect{TopLeft: InvalidPos(), BottomRight: InvalidPos()}
}

// RectFromPos returns the degenerate single-point Rect at p.
func RectFromPos(p Pos) Rect {
	return Rect{TopLeft: p, BottomRight: p}
}

func MakeRect(west, north, east, south float32) Rect {
	return Rect{TopLeft: Pos{west, north}, BottomRight: Pos{east, south}}
}

// RectFromCenterRadius returns the box around the four great-circle
// endpoints at the cardinal bearings from center. Note that this is not
// the exact bounding box of the radiusMeter circle; the convention is kept
// since consumers depend on its geometry.
func RectFromCenterRadius(center Pos, radiusMeter float32) Rect {
	north := center.Endpoint(radiusMeter, 0).Normalize()
	east := center.Endpoint(radiusMeter, 90).Normalize()
	south := center.Endpoint(radiusMeter, 180).Normalize()
	west := center.Endpoint(radiusMeter, 270).Normalize()

	return Rect{
		TopLeft:     Pos{west.Longitude(), north.Latitude()},
		BottomRight: Pos{east.Longitude(), south.Latitude()},
	}
}

func (r Rect) IsValid() bool {
	return r.TopLeft.IsValid() && r.BottomRight.IsValid()
}

func (r Rect) North() float32 { return r.TopLeft.Latitude() }
func (r Rect) South() float32 { return r.BottomRight.Latitude() }
func (r Rect) East() float32  { return r.BottomRight.Longitude() }
func (r Rect) West() float32  { return r.TopLeft.Longitude() }

func (r Rect) TopRight() Pos {
	return Pos{r.BottomRight.Longitude(), r.TopLeft.Latitude()}
}

func (r Rect) BottomLeft() Pos {
	return Pos{r.TopLeft.Longitude(), r.BottomRight.Latitude()}
}

func (r Rect) Center() Pos {
	if !r.IsValid() {
		return InvalidPos()
	}
	return Pos{
		(r.TopLeft.Longitude() + r.BottomRight.Longitude()) / 2,
		(r.TopLeft.Latitude() + r.BottomRight.Latitude()) / 2,
	}
}

// CrossesAntimeridian reports whether the rectangle spans the +/-180
// degree longitude line.
func (r Rect) CrossesAntimeridian() bool {
	return r.East() < r.West() ||
		(AlmostEqual(r.East(), 180, 1e-4) && AlmostEqual(r.West(), -180, 1e-4))
}

// SplitAtAntimeridian returns the rectangle as one or two rectangles that
// do not cross the antimeridian.
func (r Rect) SplitAtAntimeridian() []Rect {
	if !r.IsValid() {
		return nil
	}
	if r.CrossesAntimeridian() {
		return []Rect{
			MakeRect(r.West(), r.North(), 180, r.South()),
			MakeRect(-180, r.North(), r.East(), r.South()),
		}
	}
	return []Rect{r}
}

// Contains reports whether pos lies inside the rectangle, edges included.
func (r Rect) Contains(pos Pos) bool {
	if !r.IsValid() || !pos.IsValid() {
		return false
	}
	for _, sub := range r.SplitAtAntimeridian() {
		if sub.West() <= pos.Longitude() && pos.Longitude() <= sub.East() &&
			sub.North() >= pos.Latitude() && pos.Latitude() >= sub.South() {
			return true
		}
	}
	return false
}

// IsPoint reports whether the rectangle is degenerate, i.e. both corners
// are equal within epsilonDeg.
func (r Rect) IsPoint(epsilonDeg float32) bool {
	return r.IsValid() &&
		AlmostEqual(r.TopLeft.Longitude(), r.BottomRight.Longitude(), epsilonDeg) &&
		AlmostEqual(r.TopLeft.Latitude(), r.BottomRight.Latitude(), epsilonDeg)
}

// Overlaps reports whether the two rectangles share any point.
func (r Rect) Overlaps(other Rect) bool {
	if !r.IsValid() || !other.IsValid() {
		return false
	}

	if r.IsPoint(0) && other.IsPoint(0) {
		return r == other
	}

	n, s, e, w := r.North(), r.South(), r.East(), r.West()
	n2, s2, e2, w2 := other.North(), other.South(), other.East(), other.West()

	// Check the intersection criterion for the latitude first:
	// one of the four horizontal boundaries has to fall into the other
	// rectangle's latitude interval.
	if (n >= n2 && s <= n2) || (n2 >= n && s2 <= n) ||
		(n >= s2 && s <= s2) || (n2 >= s && s2 <= s) {
		if !r.CrossesAntimeridian() {
			if !other.CrossesAntimeridian() {
				// "Normal" case: neither crosses the antimeridian.
				if (e >= e2 && w <= e2) || (e2 >= e && w2 <= e) ||
					(e >= w2 && w <= w2) || (e2 >= w && w2 <= w) {
					return true
				}
			} else {
				// The other rectangle crosses the antimeridian, this one
				// does not; the antimeridian splits it in two parts.
				if w <= e2 || e >= w2 {
					return true
				}
			}
		} else {
			if other.CrossesAntimeridian() {
				// The trivial case: both cross the antimeridian and thus
				// both contain it.
				return true
			}
			// This rectangle crosses the antimeridian, the other does not.
			// This also covers the case where this rectangle covers the
			// whole longitude range (-180 <= lon <= 180).
			if w2 <= e || e2 >= w {
				return true
			}
		}
	}

	return false
}

// Inflate grows each edge outward by the given number of degrees, clamped
// to the valid longitude and latitude ranges. No-op on an invalid Rect.
func (r *Rect) Inflate(degreesLon, degreesLat float32) {
	if !r.IsValid() {
		return
	}

	r.TopLeft[0] = max(r.West()-degreesLon, -180)
	r.BottomRight[0] = min(r.East()+degreesLon, 180)
	r.TopLeft[1] = min(r.North()+degreesLat, 90)
	r.BottomRight[1] = max(r.South()-degreesLat, -90)
}

// Extend grows the rectangle to include pos. If the rectangle was invalid
// the result is the single-point rectangle at pos.
func (r *Rect) Extend(pos Pos) {
	if !pos.IsValid() {
		return
	}
	if !r.IsValid() {
		*r = RectFromPos(pos)
		return
	}

	r.TopLeft[0] = min(r.West(), pos.Longitude())
	r.BottomRight[0] = max(r.East(), pos.Longitude())
	r.TopLeft[1] = max(r.North(), pos.Latitude())
	r.BottomRight[1] = min(r.South(), pos.Latitude())
}

// ExtendRect grows the rectangle to include all of other.
func (r *Rect) ExtendRect(other Rect) {
	if !other.IsValid() {
		return
	}
	if !r.IsValid() {
		*r = other
		return
	}
	r.Extend(other.TopLeft)
	r.Extend(other.TopRight())
	r.Extend(other.BottomRight)
	r.Extend(other.BottomLeft())
}

func (r Rect) WidthDegrees() float32 {
	return r.BottomRight.Longitude() - r.TopLeft.Longitude()
}

func (r Rect) HeightDegrees() float32 {
	return r.TopLeft.Latitude() - r.BottomRight.Latitude()
}

// WidthMeter returns the great-circle width along the horizontal through
// the center of the rectangle.
func (r Rect) WidthMeter() float32 {
	centerLat := r.TopLeft.Latitude() - r.HeightDegrees()/2
	return Pos{r.West(), centerLat}.DistanceMeter(Pos{r.East(), centerLat})
}

// HeightMeter returns the great-circle height along the vertical through
// the center of the rectangle.
func (r Rect) HeightMeter() float32 {
	centerLon := r.East() - r.WidthDegrees()/2
	return Pos{centerLon, r.North()}.DistanceMeter(Pos{centerLon, r.South()})
}

func (r Rect) String() string {
	return fmt.Sprintf("Rect[tl %s, br %s]", r.TopLeft.DDString(), r.BottomRight.DDString())
}
