package domain

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleRenter Role = "renter"
)

func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleRenter
}

type User struct {
	ID            int32     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int32     `json:"review_count"`
	CreatedOn     time.Time `json:"created_on"`
}

// Actor is the authenticated caller of a request. It is resolved once at the
// request boundary and passed explicitly into every service call.
type Actor struct {
	ID   int32 `json:"id"`
	Role Role  `json:"role"`
}
