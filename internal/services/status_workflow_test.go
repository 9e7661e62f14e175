package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"New", "Reviewed", "Escalated", "Suspended", " Reviewed "} {
		_, err := ParseStatus(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "new", "Closed", "SUSPENDED"} {
		_, err := ParseStatus(s)
		assert.ErrorIs(t, err, ErrInvalidStatus, s)
	}
}

func TestCanTransition_Flat(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition("Closed", models.StatusNew))
}

func TestPlanTransition(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		change, err := PlanTransition(models.StatusNew, "Escalated", " reviewer-123 ")

		require.NoError(t, err)
		assert.Equal(t, StatusChange{Status: models.StatusEscalated, ReviewerID: "reviewer-123"}, change)
	})

	t.Run("suspended again", func(t *testing.T) {
		change, err := PlanTransition(models.StatusSuspended, "Suspended", "r1")

		require.NoError(t, err)
		assert.Equal(t, models.StatusSuspended, change.Status)
	})

	t.Run("missing reviewer", func(t *testing.T) {
		_, err := PlanTransition(models.StatusNew, "Reviewed", "  ")
		assert.ErrorIs(t, err, ErrMissingReviewer)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := PlanTransition(models.StatusNew, "Archived", "r1")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}
