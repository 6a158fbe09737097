package rest

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ignitecall/internal/calendar"
	"ignitecall/internal/service/scheduling"
)

// calendarHorizon bounds how far ahead the exported feed reaches.
const calendarHorizon = 90 * 24 * time.Hour

type availabilityResponse struct {
	PossibleTimes  []int `json:"possibleTimes"`
	AvailableTimes []int `json:"availableTimes"`
}

func (s *Server) getAvailability(c *gin.Context) {
	log := s.handlerLog(c, "getAvailability")

	username := c.Param("username")
	res, err := s.availability.Compute(c.Request.Context(), username, c.Query("date"))
	if err != nil {
		s.fail(c, log, err, errorMessages{notFound: "User does not exist."})
		return
	}

	log.Debug("availability computed",
		slog.String("username", username),
		slog.Int("possible", len(res.PossibleTimes)),
		slog.Int("available", len(res.AvailableTimes)),
	)
	c.JSON(http.StatusOK, availabilityResponse{
		PossibleTimes:  nonNil(res.PossibleTimes),
		AvailableTimes: nonNil(res.AvailableTimes),
	})
}

type blockedDatesResponse struct {
	BlockedWeekDays []int `json:"blockedWeekDays"`
	BlockedDates    []int `json:"blockedDates"`
}

func (s *Server) getBlockedDates(c *gin.Context) {
	log := s.handlerLog(c, "getBlockedDates")

	year, yErr := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	month, mErr := strconv.Atoi(strings.TrimSpace(c.Query("month")))
	if yErr != nil || mErr != nil {
		abortMessage(c, http.StatusBadRequest, "year and month are required")
		return
	}

	res, err := s.availability.BlockedDates(c.Request.Context(), c.Param("username"), year, month)
	if err != nil {
		s.fail(c, log, err, errorMessages{notFound: "User does not exist."})
		return
	}
	c.JSON(http.StatusOK, blockedDatesResponse{
		BlockedWeekDays: nonNil(res.BlockedWeekDays),
		BlockedDates:    nonNil(res.BlockedDates),
	})
}

type createSchedulingRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Observations string `json:"observations"`
	Date         string `json:"date"`
}

type schedulingResponse struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}

func (s *Server) createScheduling(c *gin.Context) {
	log := s.handlerLog(c, "createScheduling")

	var req createSchedulingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	username := c.Param("username")
	booking, err := s.scheduling.Create(c.Request.Context(), username, scheduling.CreateInput{
		Name:         req.Name,
		Email:        req.Email,
		Observations: req.Observations,
		Date:         req.Date,
	})
	if err != nil {
		s.fail(c, log, err, errorMessages{
			notFound: "User does not exist.",
			conflict: "This time is no longer available.",
		})
		return
	}

	log.Info("scheduling created",
		slog.String("scheduling_id", booking.ID.String()),
		slog.String("username", username),
		slog.Time("date", booking.Date),
	)
	c.JSON(http.StatusCreated, schedulingResponse{ID: booking.ID.String(), Date: booking.Date})
}

func (s *Server) exportCalendar(c *gin.Context) {
	log := s.handlerLog(c, "exportCalendar")

	user := currentUser(c)
	bookings, err := s.scheduling.ListUpcoming(c.Request.Context(), user.ID, calendarHorizon)
	if err != nil {
		s.fail(c, log, err, errorMessages{})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+user.Username+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.Export(user, bookings)))
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
