package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ignitecall/internal/domain"
	"ignitecall/internal/service/intervals"
)

type intervalRequest struct {
	WeekDay   int    `json:"weekDay"`
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type setIntervalsRequest struct {
	Intervals []intervalRequest `json:"intervals"`
}

type intervalResponse struct {
	WeekDay            int    `json:"weekDay"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	TimeStartInMinutes int    `json:"timeStartInMinutes"`
	TimeEndInMinutes   int    `json:"timeEndInMinutes"`
}

func toIntervalResponse(iv domain.UserTimeInterval) intervalResponse {
	return intervalResponse{
		WeekDay:            iv.WeekDay,
		StartTime:          domain.FormatClock(iv.TimeStartInMinutes),
		EndTime:            domain.FormatClock(iv.TimeEndInMinutes),
		TimeStartInMinutes: iv.TimeStartInMinutes,
		TimeEndInMinutes:   iv.TimeEndInMinutes,
	}
}

func (s *Server) setTimeIntervals(c *gin.Context) {
	log := s.handlerLog(c, "setTimeIntervals")

	var req setIntervalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	in := make([]intervals.IntervalInput, 0, len(req.Intervals))
	for _, iv := range req.Intervals {
		in = append(in, intervals.IntervalInput{
			WeekDay:   iv.WeekDay,
			Enabled:   iv.Enabled,
			StartTime: iv.StartTime,
			EndTime:   iv.EndTime,
		})
	}

	user := currentUser(c)
	saved, err := s.intervals.Set(c.Request.Context(), user.ID, in)
	if err != nil {
		s.fail(c, log, err, errorMessages{})
		return
	}

	out := toIntervalResponses(saved)
	log.Info("time intervals saved", slog.String("user_id", user.ID.String()), slog.Int("count", len(out)))
	c.JSON(http.StatusCreated, gin.H{"intervals": out})
}

func (s *Server) listTimeIntervals(c *gin.Context) {
	log := s.handlerLog(c, "listTimeIntervals")

	rows, err := s.intervals.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, log, err, errorMessages{})
		return
	}
	c.JSON(http.StatusOK, gin.H{"intervals": toIntervalResponses(rows)})
}

func toIntervalResponses(rows []domain.UserTimeInterval) []intervalResponse {
	out := make([]intervalResponse, 0, len(rows))
	for _, iv := range rows {
		out = append(out, toIntervalResponse(iv))
	}
	return out
}
