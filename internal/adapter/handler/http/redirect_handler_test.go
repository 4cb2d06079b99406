package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

func TestFinishMessage(t *testing.T) {
	tests := []struct {
		purchase bool
		status   model.TransactionStatus
		wantType string
	}{
		{true, model.TransactionStatusCompleted, FlashSuccess},
		{false, model.TransactionStatusCompleted, FlashSuccess},
		{true, model.TransactionStatusPending, FlashInfo},
		{true, model.TransactionStatusChallenge, FlashInfo},
		{true, model.TransactionStatusFailed, FlashError},
		{false, model.TransactionStatusExpired, FlashError},
		{true, model.TransactionStatusCancelled, FlashError},
		{true, model.TransactionStatus("unknown"), FlashInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			gotType, message := finishMessage(tt.purchase, tt.status)
			assert.Equal(t, tt.wantType, gotType)
			assert.Contains(t, []string{FlashSuccess, FlashInfo, FlashError}, gotType)
			assert.NotEmpty(t, message)
		})
	}

	_, purchase := finishMessage(true, model.TransactionStatusCompleted)
	_, donation := finishMessage(false, model.TransactionStatusCompleted)
	assert.NotEqual(t, purchase, donation)
}
