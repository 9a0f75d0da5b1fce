package api

import (
	"context"
	"net/http"

	"apploto/application"
	"apploto/domain/entities"
	"apploto/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Notification bool   `json:"notification"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var user *entities.User
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		user, err = s.services.AccountService(uow).Register(ctx, interfaces.RegisterInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Password:     req.Password,
			Notification: req.Notification,
		})
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAccountResponse(user))
}

func (s *Server) login(c *gin.Context) {
	s.doLogin(c, func(auth interfaces.AuthService, ctx context.Context, email, password string) (*interfaces.TokenPair, error) {
		return auth.Login(ctx, email, password)
	})
}

func (s *Server) adminLogin(c *gin.Context) {
	s.doLogin(c, func(auth interfaces.AuthService, ctx context.Context, email, password string) (*interfaces.TokenPair, error) {
		return auth.AdminLogin(ctx, email, password)
	})
}

func (s *Server) doLogin(c *gin.Context, fn func(interfaces.AuthService, context.Context, string, string) (*interfaces.TokenPair, error)) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var pair *interfaces.TokenPair
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		pair, err = fn(s.services.AuthService(uow), ctx, req.Email, req.Password)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// refresh expects the refresh token as the bearer token
func (s *Server) refresh(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
		return
	}

	var access string
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		access, err = s.services.AuthService(uow).Refresh(ctx, token)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: access})
}

func (s *Server) revokeAccess(c *gin.Context) {
	s.revoke(c, entities.TokenTypeAccess)
}

func (s *Server) revokeRefresh(c *gin.Context) {
	s.revoke(c, entities.TokenTypeRefresh)
}

func (s *Server) revoke(c *gin.Context, tokenType entities.TokenType) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
		return
	}

	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		return s.services.AuthService(uow).Revoke(ctx, token, tokenType)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": tokenType.String() + " token revoked"})
}

func (s *Server) role(c *gin.Context) {
	claims := currentClaims(c)
	c.JSON(http.StatusOK, gin.H{"role": claims.Role.String()})
}

// logout revokes the caller's access token and, when given, its refresh token
func (s *Server) logout(c *gin.Context) {
	var req logoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		return s.services.AuthService(uow).Logout(ctx, currentToken(c), req.RefreshToken)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
