// geo/pos.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	gomath "math"
)

const EarthRadiusMeter = 6371000

// invalidCoord marks an unset coordinate component; (0, 0) is a real
// location in the Gulf of Guinea and must stay representable.
const invalidCoord = float32(gomath.MaxFloat32)

// Pos is a 2D point on the Earth in degrees.
// Important: 0 (x) is longitude, 1 (y) is latitude.
type Pos [2]float32

// InvalidPos returns the sentinel position used for "unset / unresolvable".
func InvalidPos() Pos {
	return Pos{invalidCoord, invalidCoord}
}

func MakePos(lon, lat float32) Pos {
	return Pos{lon, lat}
}

func (p Pos) Longitude() float32 {
	return p[0]
}

func (p Pos) Latitude() float32 {
	return p[1]
}

func (p Pos) IsValid() bool {
	return p[0] != invalidCoord && p[1] != invalidCoord
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Pos) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

func (p Pos) AlmostEqual(other Pos, epsilon float32) bool {
	return p.IsValid() && other.IsValid() &&
		Abs(p[0]-other[0]) <= epsilon && Abs(p[1]-other[1]) <= epsilon
}

// Normalize wraps the longitude into [-180, 180] and clamps the latitude
// to [-90, 90].
func (p Pos) Normalize() Pos {
	if !p.IsValid() {
		return p
	}
	lon := p[0]
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return Pos{lon, Clamp(p[1], -90, 90)}
}

// DistanceMeter returns the great-circle distance in meters between the
// two provided positions.
func (p Pos) DistanceMeter(other Pos) float32 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	lat1, lon1 := radians(p[1]), radians(p[0])
	lat2, lon2 := radians(other[1]), radians(other[0])
	dlat, dlon := lat2-lat1, lon2-lon1

	x := sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return float32(EarthRadiusMeter * c)
}

// Endpoint returns the position reached by traveling the given distance
// along a great circle with the given initial bearing (degrees, 0 = north).
func (p Pos) Endpoint(distanceMeter, bearingDeg float32) Pos {
	lat1, lon1 := radians(p[1]), radians(p[0])
	brg := radians(bearingDeg)
	d := float64(distanceMeter) / EarthRadiusMeter

	lat2 := gomath.Asin(gomath.Sin(lat1)*gomath.Cos(d) + gomath.Cos(lat1)*gomath.Sin(d)*gomath.Cos(brg))
	lon2 := lon1 + gomath.Atan2(gomath.Sin(brg)*gomath.Sin(d)*gomath.Cos(lat1),
		gomath.Cos(d)-gomath.Sin(lat1)*gomath.Sin(lat2))

	return Pos{float32(degrees(lon2)), float32(degrees(lat2))}
}

func radians(deg float32) float64 {
	return float64(deg) / 180 * gomath.Pi
}

func degrees(rad float64) float64 {
	return rad / gomath.Pi * 180
}

func sqr(x float64) float64 { return x * x }

func Abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func Clamp(x float32, low float32, high float32) float32 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

func AlmostEqual(a, b float32, epsilon float32) bool {
	return Abs(a-b) <= epsilon
}
