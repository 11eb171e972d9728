package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// minPasswordLength matches the registration form rule.
const minPasswordLength = 6

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RepeatPassword string `json:"repeatPassword"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

func (s *HTTPServer) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and email are required")
	}
	if len(req.Password) < minPasswordLength {
		return echo.NewHTTPError(http.StatusBadRequest, "password must have at least 6 characters")
	}
	if req.Password != req.RepeatPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}

	u, err := s.accounts.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Confirmed: u.Confirmed})
}

func (s *HTTPServer) handleConfirm(c echo.Context) error {
	if err := s.accounts.Confirm(c.Request().Context(), c.Param("token")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account confirmed"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	token, err := s.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.errorResponse(c, err)
	}

	s.setSessionCookie(c, token)
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

func (s *HTTPServer) handleLogout(c echo.Context) error {
	s.clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *HTTPServer) handleForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := s.accounts.RequestReset(c.Request().Context(), req.Email); err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reset instructions sent"})
}

func (s *HTTPServer) handleCheckResetToken(c echo.Context) error {
	if err := s.accounts.CheckResetToken(c.Request().Context(), c.Param("token")); err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "token valid"})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *HTTPServer) handleCompleteReset(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Password) < minPasswordLength {
		return echo.NewHTTPError(http.StatusBadRequest, "password must have at least 6 characters")
	}

	if err := s.accounts.CompleteReset(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
