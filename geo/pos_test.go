// geo/pos_test.go
// Copyright(c) 2025 xpwx contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"testing"
)

func TestPosValidity(t *testing.T) {
	if InvalidPos().IsValid() {
		t.Error("InvalidPos must not be valid")
	}
	if !MakePos(0, 0).IsValid() {
		t.Error("(0, 0) is a real location and must be valid")
	}
	if InvalidPos() == MakePos(0, 0) {
		t.Error("invalid sentinel must be distinct from (0, 0)")
	}
}

func TestDistanceMeter(t *testing.T) {
	// One degree of longitude on the equator.
	const oneDegMeter = 111194.93

	d := MakePos(0, 0).DistanceMeter(MakePos(1, 0))
	if Abs(d-oneDegMeter) > 100 {
		t.Errorf("equator degree distance: got %f, expected ~%f", d, oneDegMeter)
	}

	// Symmetry
	a, b := MakePos(-73.7781, 40.6413), MakePos(-118.4085, 33.9416) // KJFK, KLAX
	if ab, ba := a.DistanceMeter(b), b.DistanceMeter(a); Abs(ab-ba) > 1 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
	if d := a.DistanceMeter(b); d < 3900e3 || d > 4050e3 {
		t.Errorf("KJFK-KLAX distance %f outside expected range", d)
	}

	// Distance across the antimeridian is the short way around.
	if d := MakePos(179.5, 0).DistanceMeter(MakePos(-179.5, 0)); d > 120e3 {
		t.Errorf("antimeridian distance took the long way: %f", d)
	}
}

func TestEndpoint(t *testing.T) {
	p := MakePos(10, 45)
	for _, bearing := range []float32{0, 45, 90, 135, 180, 225, 270, 315} {
		const dist = 250e3
		e := p.Endpoint(dist, bearing)
		if d := p.DistanceMeter(e); Abs(d-dist) > 100 {
			t.Errorf("bearing %.0f: endpoint at distance %f, expected %f", bearing, d, dist)
		}
	}

	// Due north from the equator.
	e := MakePos(0, 0).Endpoint(111194.93, 0)
	if Abs(e.Latitude()-1) > 0.001 || Abs(e.Longitude()) > 0.001 {
		t.Errorf("northbound endpoint: got %s", e.DDString())
	}

	// Eastward across the antimeridian, then normalized.
	e = MakePos(179.5, 0).Endpoint(111194.93, 90).Normalize()
	if Abs(e.Longitude()-(-179.5)) > 0.001 {
		t.Errorf("expected longitude wrap to -179.5, got %s", e.DDString())
	}
}

func TestNormalize(t *testing.T) {
	if p := MakePos(190, 0).Normalize(); Abs(p.Longitude()-(-170)) > 1e-4 {
		t.Errorf("190 should normalize to -170, got %f", p.Longitude())
	}
	if p := MakePos(-530, 95).Normalize(); Abs(p.Longitude()-(-170)) > 1e-4 || p.Latitude() != 90 {
		t.Errorf("(-530, 95) normalized to %s", p.DDString())
	}
	if p := InvalidPos().Normalize(); p.IsValid() {
		t.Error("normalizing an invalid position must stay invalid")
	}
}
