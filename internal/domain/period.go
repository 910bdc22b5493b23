package domain

import "time"

// PeriodKind is the recurrence window of a budget
type PeriodKind string

const (
	PeriodMonthly PeriodKind = "monthly"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodYearly  PeriodKind = "yearly"
)

// IsValid reports whether k is one of the supported period kinds
func (k PeriodKind) IsValid() bool {
	switch k {
	case PeriodMonthly, PeriodWeekly, PeriodYearly:
		return true
	}
	return false
}

// Period is an inclusive time window
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the window, both bounds inclusive
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}
