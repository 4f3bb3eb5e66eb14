package entities

import (
	"github.com/aarondl/null/v8"

	"github.com/abikoy/ddu-rims/pkg/types"
)

// Transfer lifecycle states.
const (
	TransferStatusPending   = "pending"
	TransferStatusApproved  = "approved"
	TransferStatusRejected  = "rejected"
	TransferStatusCompleted = "completed"
)

func ValidTransferStatus(status string) bool {
	switch status {
	case TransferStatusPending, TransferStatusApproved,
		TransferStatusRejected, TransferStatusCompleted:
		return true
	}
	return false
}

// AllowedTransition reports whether a transfer may move from one status
// to another. Only forward transitions exist: pending may be approved
// or rejected, an approved transfer may be completed.
func AllowedTransition(from, to string) bool {
	switch from {
	case TransferStatusPending:
		return to == TransferStatusApproved || to == TransferStatusRejected
	case TransferStatusApproved:
		return to == TransferStatusCompleted
	}
	return false
}

type Transfer struct {
	ID         uint64 `json:"id" db:"id"`
	ResourceID uint64 `json:"resourceId" db:"resource_id"`
	FromUserID uint64 `json:"fromUserId" db:"from_user_id"`
	ToUserID   uint64 `json:"toUserId" db:"to_user_id"`
	Reason     string `json:"reason" db:"reason"`
	Status     string `json:"status" db:"status"`

	ApprovedBy   null.Int64  `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovalDate null.Time   `json:"approvalDate,omitempty" db:"approval_date"`
	Remarks      null.String `json:"remarks,omitempty" db:"remarks"`

	// Joined fields, populated by listing queries.
	ResourceDescription null.String `json:"resourceDescription,omitempty" db:"-"`
	ResourceDepartment  null.String `json:"resourceDepartment,omitempty" db:"-"`
	FromUserName        null.String `json:"fromUserName,omitempty" db:"-"`
	ToUserName          null.String `json:"toUserName,omitempty" db:"-"`
	ToUserDepartment    null.String `json:"toUserDepartment,omitempty" db:"-"`

	types.BaseEntity
}
