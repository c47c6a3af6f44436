package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/victim-dao-api/models"
)

func TestReceipt_CanTransition(t *testing.T) {
	pending := models.Receipt{Status: models.ReceiptPending}
	assert.NoError(t, pending.CanTransition(models.ReceiptAccepted))
	assert.NoError(t, pending.CanTransition(models.ReceiptVerified))
	assert.NoError(t, pending.CanTransition(models.ReceiptRejected))
	assert.ErrorIs(t, pending.CanTransition(models.ReceiptPending), models.ErrInvalidStatus)

	accepted := models.Receipt{Status: models.ReceiptAccepted}
	assert.NoError(t, accepted.CanTransition(models.ReceiptVerified))
	assert.ErrorIs(t, accepted.CanTransition(models.ReceiptAccepted), models.ErrInvalidTransition)

	verified := models.Receipt{Status: models.ReceiptVerified, Verified: true}
	assert.ErrorIs(t, verified.CanTransition(models.ReceiptVerified), models.ErrInvalidTransition)
	assert.ErrorIs(t, verified.CanTransition(models.ReceiptRejected), models.ErrInvalidTransition)

	rejected := models.Receipt{Status: models.ReceiptRejected}
	assert.ErrorIs(t, rejected.CanTransition(models.ReceiptVerified), models.ErrInvalidTransition)
}

func TestReceiptSourceStatuses(t *testing.T) {
	from, err := models.ReceiptSourceStatuses(models.ReceiptVerified)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{models.ReceiptPending, models.ReceiptAccepted}, from)

	from, err = models.ReceiptSourceStatuses(models.ReceiptAccepted)
	assert.NoError(t, err)
	assert.Equal(t, []string{models.ReceiptPending}, from)

	_, err = models.ReceiptSourceStatuses("lost")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}
