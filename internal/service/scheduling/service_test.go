package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ignitecall/internal/domain"
	"ignitecall/internal/store"
)

type fakeUsers struct {
	getByUsernameFn func(ctx context.Context, username string) (domain.User, error)
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	if f.getByUsernameFn == nil {
		panic("GetByUsername not configured")
	}
	return f.getByUsernameFn(ctx, username)
}

type fakeCalendar struct {
	findIntervalFn     func(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error)
	listSchedulingsFn  func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error)
	createSchedulingFn func(ctx context.Context, s domain.Scheduling) (domain.Scheduling, error)

	transactions int
}

func (f *fakeCalendar) FindInterval(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error) {
	if f.findIntervalFn == nil {
		panic("FindInterval not configured")
	}
	return f.findIntervalFn(ctx, userID, weekDay)
}

func (f *fakeCalendar) ListIntervals(ctx context.Context, userID uuid.UUID) ([]domain.UserTimeInterval, error) {
	panic("not used")
}

func (f *fakeCalendar) ListSchedulings(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error) {
	if f.listSchedulingsFn == nil {
		panic("ListSchedulings not configured")
	}
	return f.listSchedulingsFn(ctx, userID, from, to)
}

func (f *fakeCalendar) InUserTransaction(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	f.transactions++
	return fn(ctx, f)
}

func (f *fakeCalendar) ReplaceIntervals(ctx context.Context, userID uuid.UUID, intervals []domain.UserTimeInterval) ([]domain.UserTimeInterval, error) {
	panic("not used")
}

func (f *fakeCalendar) CreateScheduling(ctx context.Context, s domain.Scheduling) (domain.Scheduling, error) {
	if f.createSchedulingFn == nil {
		panic("CreateScheduling not configured")
	}
	return f.createSchedulingFn(ctx, s)
}

var (
	testUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	testNow    = time.Date(2026, time.January, 2, 12, 0, 0, 0, time.UTC)
)

func knownUser() *fakeUsers {
	return &fakeUsers{
		getByUsernameFn: func(ctx context.Context, username string) (domain.User, error) {
			if username != "jane" {
				return domain.User{}, store.ErrNotFound
			}
			return domain.User{ID: testUserID, Username: username}, nil
		},
	}
}

func openCalendar(booked ...int) *fakeCalendar {
	return &fakeCalendar{
		findIntervalFn: func(ctx context.Context, userID uuid.UUID, weekDay int) (domain.UserTimeInterval, error) {
			if weekDay != int(time.Monday) {
				return domain.UserTimeInterval{}, store.ErrNotFound
			}
			return domain.UserTimeInterval{UserID: userID, WeekDay: weekDay, TimeStartInMinutes: 8 * 60, TimeEndInMinutes: 18 * 60}, nil
		},
		listSchedulingsFn: func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error) {
			out := make([]domain.Scheduling, 0, len(booked))
			for _, h := range booked {
				out = append(out, domain.Scheduling{UserID: userID, Date: domain.AtHour(from, h)})
			}
			return out, nil
		},
	}
}

func newTestService(cal *fakeCalendar) *Service {
	return NewService(knownUser(), cal, time.UTC).WithClock(func() time.Time { return testNow })
}

func validInput() CreateInput {
	return CreateInput{
		Name:         "John Visitor",
		Email:        "john@example.com",
		Observations: "  first call  ",
		Date:         "2026-01-05T10:30:00Z",
	}
}

func TestServiceCreate_BooksHourStart(t *testing.T) {
	cal := openCalendar(9)
	var got domain.Scheduling
	cal.createSchedulingFn = func(ctx context.Context, s domain.Scheduling) (domain.Scheduling, error) {
		got = s
		return s, nil
	}

	_, err := newTestService(cal).Create(context.Background(), "Jane", validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if cal.transactions != 1 {
		t.Fatalf("transactions = %d, want 1", cal.transactions)
	}
	want := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	if !got.Date.Equal(want) {
		t.Fatalf("date = %s, want %s", got.Date, want)
	}
	if got.UserID != testUserID {
		t.Fatalf("user id = %s, want %s", got.UserID, testUserID)
	}
	if got.Observations != "first call" {
		t.Fatalf("observations = %q, want %q", got.Observations, "first call")
	}
}

func TestServiceCreate_RejectsTakenHour(t *testing.T) {
	cal := openCalendar(10)

	_, err := newTestService(cal).Create(context.Background(), "jane", validInput())
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want %v", err, store.ErrConflict)
	}
}

func TestServiceCreate_RejectsHourOutsideWindow(t *testing.T) {
	cal := openCalendar()

	in := validInput()
	in.Date = "2026-01-05T18:00:00Z"
	_, err := newTestService(cal).Create(context.Background(), "jane", in)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("error = %v, want %v", err, ErrSlotUnavailable)
	}

	in.Date = "2026-01-06T10:00:00Z"
	_, err = newTestService(cal).Create(context.Background(), "jane", in)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("tuesday error = %v, want %v", err, ErrSlotUnavailable)
	}
}

func TestServiceCreate_MapsUniqueViolation(t *testing.T) {
	cal := openCalendar()
	cal.createSchedulingFn = func(ctx context.Context, s domain.Scheduling) (domain.Scheduling, error) {
		return domain.Scheduling{}, store.ErrConflict
	}

	_, err := newTestService(cal).Create(context.Background(), "jane", validInput())
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("error = %v, want %v", err, ErrSlotUnavailable)
	}
}

func TestServiceCreate_Validation(t *testing.T) {
	svc := newTestService(&fakeCalendar{})

	tests := []struct {
		name    string
		mutate  func(in *CreateInput)
		wantErr string
	}{
		{name: "short name", mutate: func(in *CreateInput) { in.Name = "Jo" }, wantErr: "name must have at least 3 letters"},
		{name: "bad email", mutate: func(in *CreateInput) { in.Email = "not-an-email" }, wantErr: "invalid email"},
		{name: "missing date", mutate: func(in *CreateInput) { in.Date = " " }, wantErr: "date not provided"},
		{name: "bad date", mutate: func(in *CreateInput) { in.Date = "2026-01-05" }, wantErr: "invalid date"},
		{name: "past", mutate: func(in *CreateInput) { in.Date = "2026-01-01T10:00:00Z" }, wantErr: "date is in the past"},
		{name: "current hour already started", mutate: func(in *CreateInput) { in.Date = "2026-01-02T11:59:00Z" }, wantErr: "date is in the past"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "jane", in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if vErr.Error() != tt.wantErr {
				t.Fatalf("error = %q, want %q", vErr.Error(), tt.wantErr)
			}
		})
	}
}

func TestServiceCreate_UnknownUser(t *testing.T) {
	_, err := newTestService(&fakeCalendar{}).Create(context.Background(), "nobody", validInput())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestServiceListUpcoming(t *testing.T) {
	var gotFrom, gotTo time.Time
	cal := &fakeCalendar{
		listSchedulingsFn: func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.Scheduling, error) {
			gotFrom, gotTo = from, to
			return []domain.Scheduling{}, nil
		},
	}

	if _, err := newTestService(cal).ListUpcoming(context.Background(), testUserID, 24*time.Hour); err != nil {
		t.Fatalf("ListUpcoming error: %v", err)
	}
	wantFrom := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	if !gotFrom.Equal(wantFrom) || !gotTo.Equal(wantFrom.Add(24*time.Hour)) {
		t.Fatalf("range = [%s, %s]", gotFrom, gotTo)
	}
}
