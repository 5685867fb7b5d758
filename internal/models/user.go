package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system, ordered user < head < admin <
// director for route gating.
type Role string

const (
	RoleDirector Role = "director"
	RoleAdmin    Role = "admin"
	RoleHead     Role = "head"
	RoleUser     Role = "user"
)

// Department is required for users with the head role.
type Department string

const (
	DepartmentAccounts  Department = "accounts"
	DepartmentTechnical Department = "technical"
	DepartmentIT        Department = "it"
	DepartmentSales     Department = "sales"
	DepartmentStore     Department = "store"
)

// ApprovalStatus gates whether a user may authenticate or receive
// notifications.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Rejected"
)

// User represents a staff account.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	Password         string             `bson:"password" json:"-"`
	Role             Role               `bson:"role" json:"role"`
	Department       Department         `bson:"department,omitempty" json:"department,omitempty"`
	Status           ApprovalStatus     `bson:"status" json:"status"`
	ResetCode        string             `bson:"resetCode,omitempty" json:"-"`
	ResetCodeExpires *time.Time         `bson:"resetCodeExpires,omitempty" json:"-"`
	PushToken        string             `bson:"pushToken,omitempty" json:"pushToken,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Summary reduces a user to its populated reference view.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role Role) bool {
	switch role {
	case RoleDirector, RoleAdmin, RoleHead, RoleUser:
		return true
	default:
		return false
	}
}

// IsValidDepartment checks if a department is valid.
func IsValidDepartment(d Department) bool {
	switch d {
	case DepartmentAccounts, DepartmentTechnical, DepartmentIT, DepartmentSales, DepartmentStore:
		return true
	default:
		return false
	}
}

// IsValidApprovalStatus checks if an approval status is valid.
func IsValidApprovalStatus(s ApprovalStatus) bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Password   string     `json:"password"`
	Role       Role       `json:"role"`
	Department Department `json:"department,omitempty"`
}

// LoginRequest is the login payload; the role must match the stored one.
type LoginRequest struct {
	Role     Role   `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
