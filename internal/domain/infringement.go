package domain

import "time"

// Infringement aggregates every sighting of one drone inside the no-fly zone
// while the entry is alive. Distance, X and Y describe the closest sighting;
// Pilot and UpdatedAt describe the most recent one.
type Infringement struct {
	DroneSerialNumber string    `json:"drone_serial_number"`
	Pilot             *Pilot    `json:"pilot"`
	Distance          float64   `json:"distance"`
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Merge folds a newer observation into i and returns the result.
//
// Distance never increases and the position always belongs to the minimum;
// on a tie the newer position wins. Pilot and UpdatedAt are always taken from
// next, including a nil pilot when the latest lookup failed.
func (i Infringement) Merge(next Infringement) Infringement {
	merged := Infringement{
		DroneSerialNumber: i.DroneSerialNumber,
		Pilot:             next.Pilot,
		Distance:          next.Distance,
		X:                 next.X,
		Y:                 next.Y,
		UpdatedAt:         next.UpdatedAt,
	}
	if i.Distance < next.Distance {
		merged.Distance = i.Distance
		merged.X = i.X
		merged.Y = i.Y
	}
	return merged
}
