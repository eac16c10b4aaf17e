package http

import (
	"log/slog"
	"net/http"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/auth"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
)

type AuthHandler interface {
	RegisterAdmin(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{authService: authService}
}

// RegisterAdmin implements AuthHandler.
func (a *AuthHandlerImpl) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterAdminRequest
	if !decodeJSON(w, r, &req, "RegisterAdmin") {
		return
	}

	created, err := a.authService.RegisterAdmin(r.Context(), req)
	if err != nil {
		slog.Error("RegisterAdmin service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("admin registered", "user_id", created.ID)
	response.Created(w, "Admin registered successfully", created)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req, "Login") {
		return
	}

	token, err := a.authService.Login(r.Context(), req)
	if err != nil {
		slog.Debug("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", token)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	me, err := a.authService.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}
