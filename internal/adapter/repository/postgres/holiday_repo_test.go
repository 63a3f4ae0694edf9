package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/usecase"
	"github.com/iho/achledger/internal/usecase/mocks"
)

// hasDate matches a date[] argument that contains want.
type hasDate struct {
	want time.Time
}

func (a hasDate) Match(v any) bool {
	dates, ok := v.([]pgtype.Date)
	if !ok {
		return false
	}
	for _, d := range dates {
		if d.Valid && d.Time.Equal(a.want) {
			return true
		}
	}
	return false
}

func holidayRows(holidays ...domain.Holiday) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"date", "name", "recurring"})
	for _, h := range holidays {
		rows.AddRow(dateToPg(h.Date), h.Name, h.Recurring)
	}
	return rows
}

func TestHolidayRepositorySeedsFederalHolidays(t *testing.T) {
	thanksgiving := time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)
	seeded := []domain.Holiday{
		{Date: time.Date(2000, 12, 25, 0, 0, 0, 0, time.UTC), Name: "Christmas Day", Recurring: true},
		{Date: thanksgiving, Name: "Thanksgiving Day"},
	}

	mockPool := newMockPool(t)
	mockPool.ExpectExec("INSERT INTO holidays").
		WithArgs(hasDate{thanksgiving}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 22))
	mockPool.ExpectQuery("FROM holidays").WillReturnRows(holidayRows(seeded...))

	clock := mocks.NewMockClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	repo := NewHolidayRepository(mockPool).WithFederalHolidays(clock)
	calendar := usecase.NewBusinessDayCalendar(repo, clock, 0, nil, zerolog.Nop())

	ok, err := calendar.IsBusinessDay(context.Background(), thanksgiving)
	if err != nil {
		t.Fatalf("IsBusinessDay: %v", err)
	}
	if ok {
		t.Fatal("expected 2024-11-28 not to be a business day")
	}
	assertExpectations(t, mockPool)

	// same year: no second insert
	mockPool.ExpectQuery("FROM holidays").WillReturnRows(holidayRows(seeded...))
	if _, err := repo.ListHolidays(context.Background()); err != nil {
		t.Fatalf("ListHolidays: %v", err)
	}
	assertExpectations(t, mockPool)

	// new year: next year's schedule is inserted
	clock.Set(time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC))
	mockPool.ExpectExec("INSERT INTO holidays").
		WithArgs(hasDate{time.Date(2026, 11, 26, 0, 0, 0, 0, time.UTC)}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 22))
	mockPool.ExpectQuery("FROM holidays").WillReturnRows(holidayRows(seeded...))
	if _, err := repo.ListHolidays(context.Background()); err != nil {
		t.Fatalf("ListHolidays: %v", err)
	}
	assertExpectations(t, mockPool)

}

func TestHolidayRepositorySeedFailureSurfaces(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("INSERT INTO holidays").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)

	repo := NewHolidayRepository(mockPool).WithFederalHolidays(mocks.NewMockClock(testNow))
	_, err := repo.ListHolidays(context.Background())
	if err == nil {
		t.Fatal("expected seeding error")
	}
	assertExpectations(t, mockPool)
}
