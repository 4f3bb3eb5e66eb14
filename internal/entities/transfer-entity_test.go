package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedTransition(t *testing.T) {
	allowed := [][2]string{
		{TransferStatusPending, TransferStatusApproved},
		{TransferStatusPending, TransferStatusRejected},
		{TransferStatusApproved, TransferStatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, AllowedTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	statuses := []string{
		TransferStatusPending, TransferStatusApproved,
		TransferStatusRejected, TransferStatusCompleted,
	}
	isAllowed := func(from, to string) bool {
		for _, tr := range allowed {
			if tr[0] == from && tr[1] == to {
				return true
			}
		}
		return false
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if isAllowed(from, to) {
				continue
			}
			assert.False(t, AllowedTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestAllowedTransitionTerminalStates(t *testing.T) {
	// rejected and completed are terminal.
	assert.False(t, AllowedTransition(TransferStatusRejected, TransferStatusCompleted))
	assert.False(t, AllowedTransition(TransferStatusCompleted, TransferStatusPending))
}
