package entity

import "time"

// ScheduleFilter is a domain-level filter for querying schedules.
// Used by repository layer to avoid coupling with delivery DTOs.
type ScheduleFilter struct {
	From *time.Time
	To   *time.Time
}
