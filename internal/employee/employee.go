package employee

import "time"

// Employee is the directory view of a user account. Password hashes never
// leave the repository layer.
type Employee struct {
	ID           int64     `json:"id"`
	EmployeeCode string    `json:"employee_code"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role"`
	Department   string    `json:"department"`
	BranchCode   string    `json:"branch_code"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is Employee plus the caller's effective permission set, returned by
// /users/me so clients can shape their UI without extra round trips.
type Profile struct {
	Employee
	Permissions []string `json:"permissions"`
}
