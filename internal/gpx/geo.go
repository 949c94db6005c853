package gpx

import "math"

// earthRadius is the mean radius of the earth in metres.
const earthRadius = 6372800.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// distanceAndBearing returns the haversine distance in metres and the
// initial bearing in degrees from the first point to the second.
func distanceAndBearing(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	φ1, λ1 := radians(lat1), radians(lon1)
	φ2, λ2 := radians(lat2), radians(lon2)
	dφ, dλ := φ2-φ1, λ2-λ1

	a := math.Sin(dφ/2)*math.Sin(dφ/2) +
		math.Sin(dλ/2)*math.Sin(dλ/2)*math.Cos(φ1)*math.Cos(φ2)
	distance := 2 * math.Asin(math.Sqrt(a)) * earthRadius

	b := math.Atan2(math.Sin(dλ)*math.Cos(φ2),
		math.Cos(φ1)*math.Sin(φ2)-math.Sin(φ1)*math.Cos(φ2)*math.Cos(dλ))
	bearing := math.Mod(degrees(b)+360, 360)
	return distance, bearing
}

// destination returns the point reached by travelling distance metres from
// lat/lon along a great circle with the given initial bearing. Longitude is
// normalised to [-180, 180].
func destination(lat, lon, distance, bearing float64) (float64, float64) {
	φ, λ := radians(lat), radians(lon)
	δ := distance / earthRadius
	θ := radians(bearing)

	φ2 := math.Asin(math.Sin(φ)*math.Cos(δ) + math.Cos(φ)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ),
		math.Cos(δ)-math.Sin(φ)*math.Sin(φ2))

	lon2 := math.Mod(degrees(λ2)+540, 360) - 180
	return degrees(φ2), lon2
}
