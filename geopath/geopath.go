// Package geopath turns pairs of geodetic station coordinates into the path
// parameters of a ground-wave prediction.
package geopath

import (
	"errors"
	"fmt"
	"math"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/groundwave/core"
	"github.com/signalsfoundry/groundwave/model"
)

// DefaultSurfaceRefractivity is the mean surface refractivity (N-units)
// used when a caller does not supply one.
const DefaultSurfaceRefractivity = 315.0

// ErrNotTransmitter is returned by PathBetween when the transmitting station
// has no frequency or power.
var ErrNotTransmitter = errors.New("station has no transmitter parameters")

// referenceJDay fixes the sidereal rotation of the ECI frame. Central angles
// do not depend on it, nor on antenna height: LLAToECI places a point along
// the spherical radius at the given latitude and longitude, so only the
// vector's length changes.
var referenceJDay = satellite.JDay(2000, 1, 1, 12, 0, 0)

func toECI(s model.Station) satellite.Vector3 {
	ll := satellite.LatLong{
		Latitude:  s.LatDeg * math.Pi / 180,
		Longitude: s.LonDeg * math.Pi / 180,
	}
	return satellite.LLAToECI(ll, s.AntennaHeightM/1000, referenceJDay)
}

// CentralAngle returns the angle in radians subtended at the Earth's centre
// by the two stations.
func CentralAngle(a, b model.Station) float64 {
	pa, pb := toECI(a), toECI(b)
	cx := pa.Y*pb.Z - pa.Z*pb.Y
	cy := pa.Z*pb.X - pa.X*pb.Z
	cz := pa.X*pb.Y - pa.Y*pb.X
	dot := pa.X*pb.X + pa.Y*pb.Y + pa.Z*pb.Z
	return math.Atan2(math.Sqrt(cx*cx+cy*cy+cz*cz), dot)
}

// DistanceKm is the great-circle path length between two stations over the
// sphere of radius core.EarthRadiusKm.
func DistanceKm(a, b model.Station) float64 {
	return core.EarthRadiusKm * CentralAngle(a, b)
}

// PathBetween builds the prediction input for the path from tx to rx over
// ground g. ns is the surface refractivity; zero selects
// DefaultSurfaceRefractivity. The result is not validated; pass it to
// core.Validate or an engine.
func PathBetween(tx, rx model.Station, g model.GroundType, ns float64) (model.Input, error) {
	if !tx.Transmits() {
		return model.Input{}, fmt.Errorf("%w: %q", ErrNotTransmitter, tx.ID)
	}
	if ns == 0 {
		ns = DefaultSurfaceRefractivity
	}
	return model.Input{
		TxHeightM:           tx.AntennaHeightM,
		RxHeightM:           rx.AntennaHeightM,
		FrequencyMHz:        tx.FrequencyMHz,
		TxPowerW:            tx.TxPowerW,
		SurfaceRefractivity: ns,
		DistanceKm:          DistanceKm(tx, rx),
		Epsilon:             g.Epsilon,
		SigmaSPerM:          g.SigmaSPerM,
		Polarization:        tx.Polarization,
	}, nil
}
