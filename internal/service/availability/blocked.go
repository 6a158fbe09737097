package availability

import (
	"context"
	"strings"
	"time"

	"ignitecall/internal/domain"
)

type BlockedDates struct {
	BlockedWeekDays []int
	BlockedDates    []int
}

// BlockedDates reports, for one month, the weekdays without any window and the
// days of the month whose every possible hour is already booked.
func (c *Calculator) BlockedDates(ctx context.Context, username string, year, month int) (BlockedDates, error) {
	if year < 1 || year > 9999 {
		return BlockedDates{}, validationError("invalid year")
	}
	if month < 1 || month > 12 {
		return BlockedDates{}, validationError("invalid month")
	}

	user, err := c.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return BlockedDates{}, err
	}

	intervals, err := c.intervals.ListIntervals(ctx, user.ID)
	if err != nil {
		return BlockedDates{}, err
	}

	windows := make(map[int]domain.UserTimeInterval, 7)
	for _, in := range intervals {
		if _, ok := windows[in.WeekDay]; !ok {
			windows[in.WeekDay] = in
		}
	}

	out := BlockedDates{BlockedWeekDays: []int{}, BlockedDates: []int{}}
	for wd := 0; wd <= 6; wd++ {
		if _, ok := windows[wd]; !ok {
			out.BlockedWeekDays = append(out.BlockedWeekDays, wd)
		}
	}

	days := domain.MonthDays(year, time.Month(month), c.loc)
	from := days[0]
	to := days[len(days)-1].AddDate(0, 0, 1).Add(-time.Nanosecond)
	booked, err := c.bookings.ListSchedulings(ctx, user.ID, from, to)
	if err != nil {
		return BlockedDates{}, err
	}

	takenByDay := make(map[int]map[int]struct{})
	for _, b := range booked {
		local := b.Date.In(c.loc)
		hours := takenByDay[local.Day()]
		if hours == nil {
			hours = make(map[int]struct{})
			takenByDay[local.Day()] = hours
		}
		hours[local.Hour()] = struct{}{}
	}

	for _, day := range days {
		window, ok := windows[int(day.Weekday())]
		if !ok {
			continue
		}
		possible := window.Hours()
		if len(possible) == 0 {
			continue
		}
		if len(freeHoursIn(possible, takenByDay[day.Day()])) == 0 {
			out.BlockedDates = append(out.BlockedDates, day.Day())
		}
	}

	return out, nil
}

func freeHoursIn(possible []int, taken map[int]struct{}) []int {
	out := make([]int, 0, len(possible))
	for _, h := range possible {
		if _, ok := taken[h]; !ok {
			out = append(out, h)
		}
	}
	return out
}
