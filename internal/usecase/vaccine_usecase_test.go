package usecase

import (
	"context"
	"testing"
	"time"

	"go-vaccination-booking/internal/delivery/dto"
	"go-vaccination-booking/internal/domain/entity"
	"go-vaccination-booking/internal/testutil"
	"go-vaccination-booking/pkg/apperror"
)

func TestNationalCalendarIsConsistent(t *testing.T) {
	for _, vaccine := range NationalCalendar() {
		if err := vaccine.Validate(); err != nil {
			t.Errorf("%s: %v", vaccine.Name, err)
		}
	}
}

func TestSeedNationalCalendar(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	admin := f.actor(t, entity.RoleAdmin, "admin")
	doctor := f.actor(t, entity.RoleDoctor, "doctor")
	ctx := context.Background()

	if _, err := f.vaccines.SeedNationalCalendar(ctx, doctor); err != ErrAdminOnly {
		t.Fatalf("doctor seed error = %v, want %v", err, ErrAdminOnly)
	}

	seeded, err := f.vaccines.SeedNationalCalendar(ctx, admin)
	if err != nil {
		t.Fatalf("SeedNationalCalendar() error = %v", err)
	}
	if seeded.Total != len(NationalCalendar()) {
		t.Errorf("seeded %d vaccines, want %d", seeded.Total, len(NationalCalendar()))
	}

	if _, err := f.vaccines.SeedNationalCalendar(ctx, admin); err != ErrCatalogAlreadySeeded {
		t.Errorf("second seed error = %v, want %v", err, ErrCatalogAlreadySeeded)
	}

	list, err := f.vaccines.GetVaccines(ctx)
	if err != nil {
		t.Fatalf("GetVaccines() error = %v", err)
	}
	for i := 1; i < len(list.Vaccines); i++ {
		if list.Vaccines[i-1].RecommendedAges[0] > list.Vaccines[i].RecommendedAges[0] {
			t.Errorf("catalog not ordered by first age at %d", i)
		}
	}
}

func TestCreateAndDeactivateVaccine(t *testing.T) {
	f := newFixture(t, testutil.Date(2024, time.June, 15))
	admin := f.actor(t, entity.RoleAdmin, "admin")
	parent := f.actor(t, entity.RoleParent, "parent")
	ctx := context.Background()

	_, err := f.vaccines.CreateVaccine(ctx, admin, &dto.CreateVaccineRequest{Name: "Rotavirus", RecommendedAges: []int{2, 4}, TotalDoses: 3})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("mismatched doses error = %v, want validation", err)
	}

	created, err := f.vaccines.CreateVaccine(ctx, admin, &dto.CreateVaccineRequest{Name: "Rotavirus", RecommendedAges: []int{2, 4}, TotalDoses: 2})
	if err != nil {
		t.Fatalf("CreateVaccine() error = %v", err)
	}

	if err := f.vaccines.DeactivateVaccine(ctx, admin, created.ID); err != nil {
		t.Fatalf("DeactivateVaccine() error = %v", err)
	}

	list, err := f.vaccines.GetVaccines(ctx)
	if err != nil {
		t.Fatalf("GetVaccines() error = %v", err)
	}
	if list.Total != 0 {
		t.Errorf("retired vaccine still listed")
	}

	child := f.addChild(t, parent, "2024-06-01")
	if child.VaccinationsCreated != 0 {
		t.Errorf("retired vaccine produced %d doses", child.VaccinationsCreated)
	}

	// the definition itself stays readable
	if _, err := f.vaccines.GetVaccine(ctx, created.ID); err != nil {
		t.Errorf("GetVaccine() error = %v", err)
	}
}
