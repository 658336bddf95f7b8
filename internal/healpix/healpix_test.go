package healpix

import "testing"

func TestValidate(t *testing.T) {
	for _, nside := range []int{1, 2, 8, 64, 1024} {
		if err := Validate(nside); err != nil {
			t.Errorf("Validate(%d) = %v, want nil", nside, err)
		}
	}
	for _, nside := range []int{0, -8, 3, 12, 100} {
		if err := Validate(nside); err == nil {
			t.Errorf("Validate(%d) = nil, want error", nside)
		}
	}
}

func TestRaDec2PixBounds(t *testing.T) {
	for _, nside := range []int{1, 8, 64} {
		npix := NumPixels(nside)
		for ra := 0.0; ra < 360.0; ra += 7.3 {
			for dec := -89.5; dec < 90.0; dec += 5.9 {
				pix := RaDec2Pix(nside, ra, dec)
				if pix < 0 || pix >= npix {
					t.Fatalf("RaDec2Pix(%d, %v, %v) = %d, outside [0, %d)",
						nside, ra, dec, pix, npix)
				}
			}
		}
	}
}

func TestBaseFaces(t *testing.T) {
	// At nside=1 the pixel index is the base face. The north polar cap maps
	// to faces 0-3, the equator to 4-7, the south cap to 8-11.
	tests := []struct {
		name     string
		ra, dec  float64
		lo, hi   int64
	}{
		{"north pole quadrant 0", 45, 89.9, 0, 3},
		{"north pole quadrant 2", 225, 89.9, 0, 3},
		{"equator", 0, 0, 4, 7},
		{"equator mid", 135, 0, 4, 7},
		{"south pole", 45, -89.9, 8, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := RaDec2Pix(1, tt.ra, tt.dec)
			if pix < tt.lo || pix > tt.hi {
				t.Errorf("RaDec2Pix(1, %v, %v) = %d, want in [%d, %d]",
					tt.ra, tt.dec, pix, tt.lo, tt.hi)
			}
		})
	}
}

func TestDeterminismAndLocality(t *testing.T) {
	// Same position always yields the same pixel, and a tiny offset stays in
	// the same coarse pixel.
	a := RaDec2Pix(8, 150.25, 2.5)
	b := RaDec2Pix(8, 150.25, 2.5)
	if a != b {
		t.Errorf("repeated calls disagree: %d vs %d", a, b)
	}
	c := RaDec2Pix(8, 150.2501, 2.5001)
	if a != c {
		t.Errorf("nearby position moved pixels at nside=8: %d vs %d", a, c)
	}
}

func TestAllFacesReachable(t *testing.T) {
	seen := make(map[int64]bool)
	for ra := 0.0; ra < 360.0; ra += 1.0 {
		for dec := -88.0; dec <= 88.0; dec += 1.0 {
			seen[RaDec2Pix(1, ra, dec)] = true
		}
	}
	if len(seen) != 12 {
		t.Errorf("sampling hit %d base pixels, want 12", len(seen))
	}
}
