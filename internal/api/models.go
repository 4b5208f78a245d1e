package api

// Record types mirror the backend's JSON payloads. They live in client
// memory only for the duration of a session.

// Apartment is a managed building.
type Apartment struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	TotalUnits int    `json:"total_units"`
}

// Unit is a flat inside an apartment, e.g. "101" or "A-203".
type Unit struct {
	ID          int    `json:"id"`
	ApartmentID int    `json:"apartment_id"`
	Name        string `json:"name"`
	BHKType     string `json:"bhk_type"`
	Status      string `json:"status"` // "vacant" | "occupied"
}

// Occupant is an owner or tenant attached to a unit.
type Occupant struct {
	ID       int    `json:"id"`
	UnitID   int    `json:"unit_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"` // "owner" | "tenant"
	IsActive bool   `json:"is_active"`
}

// Invoice is a maintenance invoice raised against a unit.
type Invoice struct {
	ID          int    `json:"id"`
	UnitID      int    `json:"unit_id"`
	PeriodLabel string `json:"period_label"` // e.g. "Jan 2025"
	Amount      int64  `json:"amount"`
	DueDate     string `json:"due_date"` // "2025-01-15"
	Status      string `json:"status"`   // "due" | "paid" | "overdue"
}

// Paid reports whether the invoice has been settled. Anything that is not
// "paid" (including "overdue") counts toward the due total.
func (i Invoice) Paid() bool {
	return i.Status == "paid"
}

// ApartmentBreakdown is one dashboard row.
type ApartmentBreakdown struct {
	ApartmentID int    `json:"apartment_id"`
	Name        string `json:"name"`
	TotalDue    int64  `json:"total_due"`
	TotalPaid   int64  `json:"total_paid"`
}

// DashboardSummary is the aggregate returned by GET /dashboard.
type DashboardSummary struct {
	TotalDue   int64                `json:"total_due"`
	TotalPaid  int64                `json:"total_paid"`
	Apartments []ApartmentBreakdown `json:"apartments"`
}

// SendOTPResponse is returned by POST /auth/send-otp.
type SendOTPResponse struct {
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
}

// VerifyOTPResponse is returned by POST /auth/verify-otp.
type VerifyOTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// NewApartment carries the fields for apartment create/update.
type NewApartment struct {
	Name       string `json:"name"`
	City       string `json:"city"`
	TotalUnits int    `json:"total_units"`
}

// NewUnit carries the fields for unit create/update.
type NewUnit struct {
	Name    string `json:"name"`
	BHKType string `json:"bhk_type"`
	Status  string `json:"status"`
}

// NewOccupant carries the fields for occupant create/update.
type NewOccupant struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// NewInvoice carries the fields for invoice create/update.
type NewInvoice struct {
	PeriodLabel string `json:"period_label"`
	Amount      int64  `json:"amount"`
	DueDate     string `json:"due_date"`
}
