package domain

// Pilot is the registered operator of a drone, as reported by the pilot
// directory at lookup time. The serial→pilot pairing is best effort.
type Pilot struct {
	PilotID     string `json:"pilot_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	CreatedDate string `json:"created_date"`
	Email       string `json:"email"`
}
