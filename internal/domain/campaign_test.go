package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	allowed := []struct{ from, to BillingStatus }{
		{BillingStatusActive, BillingStatusPaused},
		{BillingStatusPaused, BillingStatusActive},
		{BillingStatusPausedInsufficientFunds, BillingStatusActive},
		{BillingStatusActive, BillingStatusPausedInsufficientFunds},
		{BillingStatusActive, BillingStatusStopped},
		{BillingStatusPaused, BillingStatusStopped},
		{BillingStatusPausedInsufficientFunds, BillingStatusStopped},
		{BillingStatusActive, BillingStatusCompleted},
	}
	for _, tr := range allowed {
		assert.NoError(t, ValidateTransition(tr.from, tr.to), "%s -> %s", tr.from, tr.to)
	}

	rejected := []struct{ from, to BillingStatus }{
		{BillingStatusStopped, BillingStatusActive},
		{BillingStatusStopped, BillingStatusPaused},
		{BillingStatusCompleted, BillingStatusActive},
		{BillingStatusCompleted, BillingStatusStopped},
		{BillingStatusPaused, BillingStatusPausedInsufficientFunds},
	}
	for _, tr := range rejected {
		err := ValidateTransition(tr.from, tr.to)
		assert.Error(t, err, "%s -> %s", tr.from, tr.to)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}

func TestInsufficientFundsError_Message(t *testing.T) {
	err := &InsufficientFundsError{Balance: 500, Amount: -3000, Floor: MinimumBalance}
	assert.Equal(t, "debit of 3000 would bring your balance to -2500, minimum allowed is -2000", err.Error())
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
}

func TestBillingStatus_Engaged(t *testing.T) {
	assert.True(t, BillingStatusActive.Engaged())
	assert.True(t, BillingStatusPaused.Engaged())
	assert.True(t, BillingStatusPausedInsufficientFunds.Engaged())
	assert.False(t, BillingStatusStopped.Engaged())
	assert.False(t, BillingStatusCompleted.Engaged())
}
