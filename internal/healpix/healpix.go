// Package healpix computes nested-scheme HEALPix pixel indices from sky
// coordinates. Only the forward ang2pix direction is needed: the reference
// target catalogs this tool patches from are partitioned on disk by nested
// healpixel, and rows are bucketed by the pixel covering their position.
package healpix

import (
	"math"

	"github.com/specsurvey/zcatalog/pkg/errors"
)

const twoThirds = 2.0 / 3.0

// Validate reports whether nside is a power of two in the supported range.
func Validate(nside int) error {
	if nside < 1 || nside > 1<<29 || nside&(nside-1) != 0 {
		return errors.NewValidationError("nside", nside, "must be a power of two")
	}
	return nil
}

// NumPixels returns the total pixel count for an nside, 12*nside^2.
func NumPixels(nside int) int64 {
	return 12 * int64(nside) * int64(nside)
}

// RaDec2Pix returns the nested-scheme pixel containing the given equatorial
// position, with ra and dec in degrees.
func RaDec2Pix(nside int, ra, dec float64) int64 {
	theta := (90.0 - dec) * math.Pi / 180.0
	phi := ra * math.Pi / 180.0
	return Ang2Pix(nside, theta, phi)
}

// Ang2Pix returns the nested-scheme pixel for colatitude theta in [0,pi] and
// longitude phi in radians.
func Ang2Pix(nside int, theta, phi float64) int64 {
	z := math.Cos(theta)
	za := math.Abs(z)
	tt := math.Mod(phi/(math.Pi/2), 4.0)
	if tt < 0 {
		tt += 4.0
	}

	ns := int64(nside)
	var face, ix, iy int64

	if za <= twoThirds {
		// Equatorial region: locate the diamond via the two face edges
		// crossing this position.
		temp1 := float64(ns) * (0.5 + tt)
		temp2 := float64(ns) * z * 0.75
		jp := int64(temp1 - temp2)
		jm := int64(temp1 + temp2)

		ifp := jp / ns
		ifm := jm / ns
		switch {
		case ifp == ifm:
			face = (ifp & 3) + 4
		case ifp < ifm:
			face = ifp & 3
		default:
			face = (ifm & 3) + 8
		}
		ix = jm & (ns - 1)
		iy = ns - (jp & (ns - 1)) - 1
	} else {
		// Polar caps.
		ntt := int64(tt)
		if ntt >= 4 {
			ntt = 3
		}
		tp := tt - float64(ntt)
		tmp := float64(ns) * math.Sqrt(3.0*(1.0-za))

		jp := int64(tp * tmp)
		jm := int64((1.0 - tp) * tmp)
		if jp >= ns {
			jp = ns - 1
		}
		if jm >= ns {
			jm = ns - 1
		}

		if z >= 0 {
			face = ntt
			ix = ns - jm - 1
			iy = ns - jp - 1
		} else {
			face = ntt + 8
			ix = jp
			iy = jm
		}
	}

	return face*ns*ns + interleave(ix, iy)
}

// interleave bit-interleaves ix (even bits) and iy (odd bits) into the
// within-face nested index.
func interleave(ix, iy int64) int64 {
	return spread(ix) | spread(iy)<<1
}

// spread inserts a zero bit between each bit of v.
func spread(v int64) int64 {
	x := uint64(v) & 0x00000000ffffffff
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return int64(x)
}
