package model

// Hall represents a concert hall.  Capacity bounds how many tickets can
// exist for a concert held there.
//
// Fields:
//
//	ID       – hall id.
//	Name     – unique hall name.
//	Capacity – number of seats.
//	Location – free-form address or description, may be empty.
type Hall struct {
	ID       ID     `json:"id"`                 // halls.id
	Name     string `json:"name"`               // halls.name
	Capacity int    `json:"capacity"`           // halls.capacity
	Location string `json:"location,omitempty"` // halls.location
}

// HallRequest is the body of POST /api/halls and PUT /api/halls/{id}.
type HallRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	Location string `json:"location,omitempty"`
}

// Performer is an artist or ensemble that concerts are booked for.
type Performer struct {
	ID   ID     `json:"id"`   // performers.id
	Name string `json:"name"` // performers.name
}

// PerformerRequest is the body of POST /api/performers and PUT
// /api/performers/{id}.
type PerformerRequest struct {
	Name string `json:"name"`
}
