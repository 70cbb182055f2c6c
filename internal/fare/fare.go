package fare

import (
	"math"

	"github.com/example/ride-hailing/internal/models"
)

// Per-class pricing: flat base plus per-kilometre and per-minute components.
type rate struct {
	base      float64
	perKm     float64
	perMinute float64
}

var rates = map[models.VehicleClass]rate{
	models.ClassAuto: {base: 30, perKm: 10, perMinute: 2.0},
	models.ClassCar:  {base: 50, perKm: 11, perMinute: 3.0},
	models.ClassBike: {base: 20, perKm: 8, perMinute: 1.5},
}

// Estimate computes the fare for every vehicle class from a trip's road
// distance and travel time. Pure: same inputs always give the same map.
// The final per-class sum is rounded half up to a whole unit.
func Estimate(distanceMeters, durationSeconds int) map[models.VehicleClass]int {
	km := float64(distanceMeters) / 1000.0
	min := float64(durationSeconds) / 60.0
	out := make(map[models.VehicleClass]int, len(rates))
	for class, r := range rates {
		out[class] = int(math.Round(r.base + km*r.perKm + min*r.perMinute))
	}
	return out
}

// Classes lists every class Estimate prices, in no particular order.
func Classes() []models.VehicleClass {
	out := make([]models.VehicleClass, 0, len(rates))
	for c := range rates {
		out = append(out, c)
	}
	return out
}
