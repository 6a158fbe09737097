package calendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"ignitecall/internal/domain"
)

func TestExport(t *testing.T) {
	owner := domain.User{Username: "jane", Name: "Jane Doe"}
	start := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	bookings := []domain.Scheduling{
		{
			ID:           uuid.MustParse("00000000-0000-0000-0000-0000000000aa"),
			Date:         start,
			Name:         "John Visitor",
			Email:        "john@example.com",
			Observations: "first call",
			CreatedAt:    start.Add(-48 * time.Hour),
		},
		{
			ID:        uuid.MustParse("00000000-0000-0000-0000-0000000000bb"),
			Date:      start.Add(3 * time.Hour),
			Name:      "Mary Visitor",
			Email:     "mary@example.com",
			CreatedAt: start.Add(-24 * time.Hour),
		},
	}

	out := Export(owner, bookings)

	parsed, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar error: %v", err)
	}
	events := parsed.Events()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	first := events[0]
	if first.Id() != "00000000-0000-0000-0000-0000000000aa@ignitecall" {
		t.Fatalf("uid = %q", first.Id())
	}
	gotStart, err := first.GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt error: %v", err)
	}
	if !gotStart.Equal(start) {
		t.Fatalf("start = %s, want %s", gotStart, start)
	}
	gotEnd, err := first.GetEndAt()
	if err != nil {
		t.Fatalf("GetEndAt error: %v", err)
	}
	if !gotEnd.Equal(start.Add(time.Hour)) {
		t.Fatalf("end = %s, want %s", gotEnd, start.Add(time.Hour))
	}
	if p := first.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Call with John Visitor" {
		t.Fatalf("summary = %+v", p)
	}
	if p := events[1].GetProperty(ical.ComponentPropertyDescription); p != nil {
		t.Fatalf("description = %q, want none", p.Value)
	}
}

func TestExport_Empty(t *testing.T) {
	out := Export(domain.User{Username: "jane", Name: "Jane"}, nil)

	parsed, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar error: %v", err)
	}
	if n := len(parsed.Events()); n != 0 {
		t.Fatalf("len(events) = %d, want 0", n)
	}
}
