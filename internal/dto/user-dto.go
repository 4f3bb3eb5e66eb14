package dto

import (
	"time"

	"github.com/abikoy/ddu-rims/internal/entities"
)

// UserDTO is the serialized account: the password hash never leaves
// the service layer.
type UserDTO struct {
	ID           uint64     `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Department   string     `json:"department"`
	Role         string     `json:"role"`
	IsApproved   bool       `json:"isApproved"`
	ApprovedBy   *uint64    `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	RegisteredBy *uint64    `json:"registeredBy,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

func UserToDTO(user *entities.User) *UserDTO {
	out := &UserDTO{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		Department: user.Department,
		Role:       user.Role,
		IsApproved: user.IsApproved,
		CreatedAt:  user.CreatedAt,
	}
	if user.ApprovedBy.Valid {
		v := uint64(user.ApprovedBy.Int64)
		out.ApprovedBy = &v
	}
	if user.ApprovedAt.Valid {
		t := user.ApprovedAt.Time
		out.ApprovedAt = &t
	}
	if user.RegisteredBy.Valid {
		v := uint64(user.RegisteredBy.Int64)
		out.RegisteredBy = &v
	}
	return out
}

func UsersToDTO(users []entities.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *UserToDTO(&users[i]))
	}
	return out
}

// UpdateUserDTO is the admin-side account edit.
type UpdateUserDTO struct {
	FullName   *string `json:"fullName" validate:"omitempty,min=1"`
	Department *string `json:"department" validate:"omitempty,department"`
	Role       *string `json:"role" validate:"omitempty,role"`
}

// UpdateProfileDTO is the self-service edit.
type UpdateProfileDTO struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}
