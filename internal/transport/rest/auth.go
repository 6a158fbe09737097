package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ignitecall/internal/domain"
	"ignitecall/internal/service/auth"
)

type profileRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

type accountRequest struct {
	Type              string  `json:"type"`
	Provider          string  `json:"provider" binding:"required"`
	ProviderAccountID string  `json:"providerAccountId" binding:"required"`
	RefreshToken      *string `json:"refreshToken"`
	AccessToken       *string `json:"accessToken"`
	ExpiresAt         *int64  `json:"expiresAt"`
	TokenType         *string `json:"tokenType"`
	Scope             *string `json:"scope"`
	IDToken           *string `json:"idToken"`
	SessionState      *string `json:"sessionState"`
}

type signInRequest struct {
	Profile profileRequest `json:"profile"`
	Account accountRequest `json:"account"`
}

type sessionResponse struct {
	SessionToken string       `json:"sessionToken"`
	Expires      time.Time    `json:"expires"`
	User         userResponse `json:"user"`
}

func (s *Server) signIn(c *gin.Context) {
	log := s.handlerLog(c, "signIn")

	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, _ := c.Cookie(claimCookie)
	res, err := s.auth.SignIn(c.Request.Context(), auth.SignInInput{
		ClaimToken: claim,
		Profile: auth.Profile{
			Name:      req.Profile.Name,
			Email:     req.Profile.Email,
			AvatarURL: req.Profile.AvatarURL,
		},
		Account: domain.Account{
			Type:              req.Account.Type,
			Provider:          req.Account.Provider,
			ProviderAccountID: req.Account.ProviderAccountID,
			RefreshToken:      req.Account.RefreshToken,
			AccessToken:       req.Account.AccessToken,
			ExpiresAt:         req.Account.ExpiresAt,
			TokenType:         req.Account.TokenType,
			Scope:             req.Account.Scope,
			IDToken:           req.Account.IDToken,
			SessionState:      req.Account.SessionState,
		},
	})
	if err != nil {
		s.fail(c, log, err, errorMessages{conflict: "Account already linked."})
		return
	}

	if res.Created {
		s.clearCookie(c, claimCookie)
	}
	s.setSessionCookie(c, res.Session)

	log.Info("signed in",
		slog.String("user_id", res.User.ID.String()),
		slog.String("provider", req.Account.Provider),
		slog.Bool("new_account", res.Created),
	)
	c.JSON(http.StatusOK, sessionResponse{
		SessionToken: res.Session.SessionToken,
		Expires:      res.Session.Expires,
		User:         toUserResponse(res.User),
	})
}

func (s *Server) signOut(c *gin.Context) {
	log := s.handlerLog(c, "signOut")

	session := currentSession(c)
	if err := s.auth.DeleteSession(c.Request.Context(), session.SessionToken); err != nil {
		s.fail(c, log, err, errorMessages{})
		return
	}
	s.clearCookie(c, sessionCookie)
	c.Status(http.StatusNoContent)
}
