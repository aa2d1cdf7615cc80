package entities

// AdminStats is the platform-wide dashboard projection
type AdminStats struct {
	TotalUsers     int     `json:"total_users"`
	TotalProviders int     `json:"total_providers"`
	TotalBookings  int     `json:"total_bookings"`
	Revenue        float64 `json:"revenue"`
	ActiveBookings int     `json:"active_bookings"`
	CompletedToday int     `json:"completed_today"`
}

// ProviderStats is the dashboard projection for a single provider
type ProviderStats struct {
	TotalBookings  int     `json:"total_bookings"`
	Earnings       float64 `json:"earnings"`
	Rating         float64 `json:"rating"`
	ActiveRequests int     `json:"active_requests"`
}

// UserStats is the dashboard projection for a single customer
type UserStats struct {
	ActiveBookings    int     `json:"active_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	TotalSpent        float64 `json:"total_spent"`
}

// Stats is the tagged per-role stats result. Exactly one of the three
// payload fields is set, matching Role.
type Stats struct {
	Role     Role           `json:"role"`
	Admin    *AdminStats    `json:"admin,omitempty"`
	Provider *ProviderStats `json:"provider,omitempty"`
	User     *UserStats     `json:"user,omitempty"`
}
