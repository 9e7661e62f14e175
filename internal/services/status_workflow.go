package services

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/models"
)

var allStatuses = []models.ReportStatus{
	models.StatusNew,
	models.StatusReviewed,
	models.StatusEscalated,
	models.StatusSuspended,
}

// Status labels are flat: every label may move to every label, itself
// included. Tightening the workflow means editing this table only.
var transitions = map[models.ReportStatus][]models.ReportStatus{
	models.StatusNew:       allStatuses,
	models.StatusReviewed:  allStatuses,
	models.StatusEscalated: allStatuses,
	models.StatusSuspended: allStatuses,
}

// ParseStatus accepts exactly one of the four status labels.
func ParseStatus(s string) (models.ReportStatus, error) {
	st := models.ReportStatus(strings.TrimSpace(s))
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q (must be New, Reviewed, Escalated or Suspended)", ErrInvalidStatus, s)
	}
	return st, nil
}

// CanTransition reports whether a report in from may be moved to to.
func CanTransition(from, to models.ReportStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatusChange is a validated update ready to be written.
type StatusChange struct {
	Status     models.ReportStatus
	ReviewerID string
}

// PlanTransition validates a requested update of a report currently in
// current. The reviewer is mandatory on every update.
func PlanTransition(current models.ReportStatus, status, reviewerID string) (StatusChange, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return StatusChange{}, err
	}

	reviewer := strings.TrimSpace(reviewerID)
	if reviewer == "" {
		return StatusChange{}, ErrMissingReviewer
	}

	if !CanTransition(current, next) {
		return StatusChange{}, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStatus, current, next)
	}

	return StatusChange{Status: next, ReviewerID: reviewer}, nil
}
