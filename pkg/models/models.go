package models

// OfferType is the kind of posting. Values match the web UI's wire format.
type OfferType string

const (
	OfferTypeInternship  OfferType = "stage"
	OfferTypeScholarship OfferType = "bourse"
)

// Valid reports whether t is a known offer type
func (t OfferType) Valid() bool {
	return t == OfferTypeInternship || t == OfferTypeScholarship
}

// Offer represents a posting visible to students
type Offer struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	Company      string    `json:"company"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	Type         OfferType `json:"type"`
	Salary       string    `json:"salary,omitempty"`
}

// Status is the review state of an application
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Final reports whether no further transition is allowed from s
func (s Status) Final() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application represents a student's submission against one offer.
// OfferTitle and Company are a snapshot taken at submission time.
type Application struct {
	ID          int64  `json:"id"`
	OfferTitle  string `json:"offerTitle"`
	Company     string `json:"company"`
	Status      Status `json:"status"`
	AppliedDate string `json:"appliedDate"`
}

// Stats holds aggregate counts for read-only collaborators
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Offers   int `json:"offers"`
}
