package usecase

import (
	"fmt"
	"time"

	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/pkg/apperror"
)

// GenerateDoseSchedule expands the vaccine calendar against the child's
// birth date. Dose i of a vaccine is due birthDate + ages[i] months, with
// day overflow normalized into the following month. Doses already in the
// past at now start as delayed. Vaccines without recommended ages yield no
// records.
func GenerateDoseSchedule(child *entity.Child, vaccines []entity.Vaccine, now time.Time) ([]entity.DoseRecord, error) {
	birthDate := dateOf(child.BirthDate)
	records := make([]entity.DoseRecord, 0, len(vaccines)*2)

	for i := range vaccines {
		vaccine := &vaccines[i]
		if err := vaccine.Validate(); err != nil {
			return nil, apperror.Validation(fmt.Sprintf("vaccine %q: %v", vaccine.Name, err))
		}

		for dose, age := range vaccine.RecommendedAges {
			scheduledDate := birthDate.AddDate(0, age, 0)
			status := entity.DoseStatusScheduled
			if scheduledDate.Before(now) {
				status = entity.DoseStatusDelayed
			}

			records = append(records, entity.DoseRecord{
				ChildID:       child.ID,
				VaccineID:     vaccine.ID,
				DoseNumber:    dose + 1,
				ScheduledDate: scheduledDate,
				Status:        status,
				Vaccine:       vaccine,
			})
		}
	}

	return records, nil
}

// dateOf truncates t to midnight UTC of its calendar day
func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate parses a YYYY-MM-DD calendar date as midnight UTC
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}

// parseOptionalDate parses value when it is set
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
