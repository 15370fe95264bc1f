package user

import "time"

// User is the persistence shape of an employee account. Role is a static
// string resolved to an auth.Role at login; department and branch_code
// partition data visibility.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	EmployeeCode string    `gorm:"column:employee_code;uniqueIndex;not null"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"column:email"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null"`
	Department   string    `gorm:"column:department"`
	BranchCode   string    `gorm:"column:branch_code"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
