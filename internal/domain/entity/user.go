package entity

import "time"

// User is an organization member. ManagerID is a lookup key into the
// directory, not an ownership link; it may dangle after the manager is
// deleted and lookups simply miss.
type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	ManagerID         string    `json:"manager_id,omitempty"`
	Department        string    `json:"department,omitempty"`
	IsManagerApprover bool      `json:"is_manager_approver"`
	CreatedAt         time.Time `json:"created_at"`
}

// Company holds the organization record created at signup. Currency is the
// reporting currency that converted expense amounts are expressed in.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
