package entities

import (
	"github.com/aarondl/null/v8"

	"github.com/abikoy/ddu-rims/pkg/types"
)

type User struct {
	ID         uint64 `json:"id" db:"id"`
	FullName   string `json:"fullName" db:"full_name"`
	Email      string `json:"email" db:"email"`
	Password   string `json:"-" db:"password"`
	Department string `json:"department" db:"department"`
	Role       string `json:"role" db:"role"`

	IsApproved   bool      `json:"isApproved" db:"is_approved"`
	ApprovedBy   null.Int64 `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt   null.Time  `json:"approvedAt,omitempty" db:"approved_at"`
	RegisteredBy null.Int64 `json:"registeredBy,omitempty" db:"registered_by"`

	types.BaseEntity
}
