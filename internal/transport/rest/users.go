package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ignitecall/internal/domain"
	"ignitecall/internal/service/users"
)

type createUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Email     *string   `json:"email"`
	AvatarURL *string   `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Bio:       u.Bio,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Server) createUser(c *gin.Context) {
	log := s.handlerLog(c, "createUser")

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Create(c.Request.Context(), users.CreateInput{Username: req.Username, Name: req.Name})
	if err != nil {
		s.fail(c, log, err, errorMessages{conflict: "Username already taken."})
		return
	}

	claim, err := s.claims.Sign(user.ID)
	if err != nil {
		s.fail(c, log, err, errorMessages{})
		return
	}
	s.setCookie(c, claimCookie, claim, int(s.claims.TTL().Seconds()))

	log.Info("user created", slog.String("user_id", user.ID.String()), slog.String("username", user.Username))
	c.JSON(http.StatusCreated, toUserResponse(user))
}

type updateProfileRequest struct {
	Bio string `json:"bio"`
}

func (s *Server) updateProfile(c *gin.Context) {
	log := s.handlerLog(c, "updateProfile")

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(c)
	if err := s.users.UpdateProfile(c.Request.Context(), user.ID, req.Bio); err != nil {
		s.fail(c, log, err, errorMessages{})
		return
	}
	c.Status(http.StatusNoContent)
}

type publicProfileResponse struct {
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Bio       string  `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

func (s *Server) getProfile(c *gin.Context) {
	log := s.handlerLog(c, "getProfile")

	user, err := s.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.fail(c, log, err, errorMessages{notFound: "User does not exist."})
		return
	}
	c.JSON(http.StatusOK, publicProfileResponse{
		Username:  user.Username,
		Name:      user.Name,
		Bio:       user.Bio,
		AvatarURL: user.AvatarURL,
	})
}
