package geofence

import "math"

// WGS-84 ellipsoid parameters.
const (
	semiMajor  = 6378137.0
	semiMinor  = 6356752.314245
	flattening = 1 / 298.257223563
)

// Fence is a circular region on the ellipsoid used to authorize
// location-dependent actions.
type Fence struct {
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// Contains reports whether the given coordinates fall within the fence.
// A point exactly on the boundary (distance == radius) counts as inside.
// Out-of-range or NaN coordinates, and point pairs for which the distance
// computation does not converge, are treated as outside.
func (f Fence) Contains(lat, lng float64) bool {
	if !validCoordinate(lat, lng) || !validCoordinate(f.Lat, f.Lng) {
		return false
	}
	d, ok := Distance(f.Lat, f.Lng, lat, lng)
	if !ok {
		return false
	}
	return d <= f.RadiusMeters
}

func validCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Distance returns the geodesic distance in meters between two points on the
// WGS-84 ellipsoid, computed with Vincenty's inverse formula. A spherical
// great-circle distance is off by up to ~0.5% which matters at a 200 m
// radius; Vincenty is accurate to well under a millimeter at that scale.
// The second return value is false when the iteration fails to converge,
// which happens only for nearly antipodal points.
func Distance(lat1, lng1, lat2, lng2 float64) (float64, bool) {
	const rad = math.Pi / 180

	// Reduced latitudes on the auxiliary sphere.
	u1 := math.Atan((1 - flattening) * math.Tan(lat1*rad))
	u2 := math.Atan((1 - flattening) * math.Tan(lat2*rad))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	l := (lng2 - lng1) * rad
	lambda := l

	var sinSigma, cosSigma, sigma, cos2Alpha, cos2SigmaM float64
	for i := 0; i < 200; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		a := cosU2 * sinLambda
		b := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(a*a + b*b)
		if sinSigma == 0 {
			// Coincident points.
			return 0, true
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha == 0 {
			// Equatorial geodesic.
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		}

		c := flattening / 16 * cos2Alpha * (4 + flattening*(4-3*cos2Alpha))
		prev := lambda
		lambda = l + (1-c)*flattening*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < 1e-12 {
			uSq := cos2Alpha * (semiMajor*semiMajor - semiMinor*semiMinor) / (semiMinor * semiMinor)
			bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
			bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
			deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
				(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
					bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
			return semiMinor * bigA * (sigma - deltaSigma), true
		}
	}
	return 0, false
}
