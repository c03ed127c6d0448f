// Package ndz implements the no-fly-zone geometry: a circle on the sensor's
// coordinate plane and the distance of a drone to its center.
package ndz

import (
	"math"

	"birdnest/internal/domain"
)

// Zone is a circular no-fly zone. Coordinates and radius share the feed's
// units (millimetres for the reference sensor).
type Zone struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

// Distance returns the euclidean distance from the drone to the zone center.
func (z Zone) Distance(d domain.Drone) float64 {
	return math.Hypot(d.PositionX-z.CenterX, d.PositionY-z.CenterY)
}

// Violates reports whether distance lies strictly inside the zone.
func (z Zone) Violates(distance float64) bool {
	return distance < z.Radius
}

// Sighting pairs a drone with its distance to the zone center.
type Sighting struct {
	Drone    domain.Drone
	Distance float64
}

// Infringing returns the drones of a snapshot that are inside the zone, in
// feed order.
func (z Zone) Infringing(drones []domain.Drone) []Sighting {
	var out []Sighting
	for _, d := range drones {
		if dist := z.Distance(d); z.Violates(dist) {
			out = append(out, Sighting{Drone: d, Distance: dist})
		}
	}
	return out
}
