package model

// Page is the paged list envelope returned by every search endpoint.
// Number is zero-based.  First and Last tell whether a previous or next page
// exists.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size,omitempty"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// PageRequest is the common part of every paged query body.  Filters are
// added next to these keys by the caller.
type PageRequest struct {
	Page int    `json:"page"`
	Size int    `json:"size"`
	Sort string `json:"sort,omitempty"`
}

// About is the payload of GET /api/about.
type About struct {
	AuthorName       string   `json:"authorName"`
	Group            string   `json:"group"`
	ContactEmail     string   `json:"contactEmail"`
	ContactPhone     string   `json:"contactPhone"`
	Technologies     []string `json:"technologies"`
	ProjectStartDate string   `json:"projectStartDate"`
	ProjectEndDate   string   `json:"projectEndDate"`
}

// Statistics is the payload of GET /api/statistics.
type Statistics struct {
	TotalUsers            int64            `json:"totalUsers"`
	AverageSessionMinutes float64          `json:"averageSessionMinutes"`
	AverageSessionHours   float64          `json:"averageSessionHours"`
	TotalTickets          int64            `json:"totalTickets"`
	SoldTickets           int64            `json:"soldTickets"`
	ReservedTickets       int64            `json:"reservedTickets"`
	AvailableTickets      int64            `json:"availableTickets"`
	UsersByRole           map[string]int64 `json:"usersByRole"`
	TicketsByStatus       map[string]int64 `json:"ticketsByStatus"`
}
