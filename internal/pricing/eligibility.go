package pricing

import (
	"time"

	"github.com/gdg-garage/convention-booking/internal/models"
)

// DOBInRange checks dob against the inclusive [from, to] window. A nil bound
// is unbounded on that side.
func DOBInRange(dob time.Time, from, to *time.Time) bool {
	d := dateOnly(dob)
	if from != nil && d.Before(dateOnly(*from)) {
		return false
	}
	if to != nil && d.After(dateOnly(*to)) {
		return false
	}
	return true
}

// RateEligible reports whether a participant born on dob with the given
// discipline selection may book rate.
func RateEligible(rate models.Rate, dob time.Time, disciplineIDs []uint) bool {
	if !rate.IsActive {
		return false
	}
	if !DOBInRange(dob, rate.DOBFrom, rate.DOBTo) {
		return false
	}
	return disciplinesMatch(rate.Disciplines, disciplineIDs)
}

// EligibleRates filters rates down to the eligible ones, keeping their order.
func EligibleRates(rates []models.Rate, dob time.Time, disciplineIDs []uint) []models.Rate {
	var eligible []models.Rate
	for _, r := range rates {
		if RateEligible(r, dob, disciplineIDs) {
			eligible = append(eligible, r)
		}
	}
	return eligible
}

func disciplinesMatch(rateDisciplines []models.Discipline, selected []uint) bool {
	if len(rateDisciplines) == 0 {
		return true
	}
	for _, d := range rateDisciplines {
		for _, id := range selected {
			if d.ID == id {
				return true
			}
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
