package permission

import (
	"time"
)

type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Grant is a row of the user_permissions join: a named permission held by a
// user on top of what their role implies.
type Grant struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	EmployeeCode   string    `json:"employee_code"`
	PermissionID   int64     `json:"permission_id"`
	PermissionName string    `json:"permission_name"`
	GrantedBy      *int64    `json:"granted_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
