package auth

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/httputil"
	"github.com/redmonkez12/healthmate-api/internal/logging"
	"github.com/redmonkez12/healthmate-api/internal/user"
)

const maxAuthBody = 1 << 20

// Handler contains HTTP handlers for the /auth endpoint
type Handler struct {
	service *Service
	cookies *CookieManager
}

func NewHandler(service *Service, cookies *CookieManager) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

// AuthRequest is the body of POST /auth. Which fields are read depends on
// Action: "signup", "signin" or "signout".
type AuthRequest struct {
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// UserResponse wraps the public user view. User is null for anonymous
// requests.
type UserResponse struct {
	User *user.PublicUser `json:"user"`
}

// OKResponse is returned by signout.
type OKResponse struct {
	OK bool `json:"ok"`
}

// Me returns the user behind the session cookie
// @Summary      Current user
// @Description  Resolve the session cookie to the signed-in user. Any problem with the session yields an anonymous 401 rather than an error.
// @Tags         auth
// @Produce      json
// @Success      200 {object} UserResponse
// @Failure      401 {object} UserResponse "No user"
// @Router       /auth [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := TokenFromRequest(r)
	if token == "" {
		httputil.RespondJSON(w, UserResponse{}, http.StatusUnauthorized)
		return
	}

	me, err := h.service.Identify(r.Context(), token)
	if err != nil {
		logging.FromContext(r.Context()).Debug("session not accepted", "error", err)
		httputil.RespondJSON(w, UserResponse{}, http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, UserResponse{User: me}, http.StatusOK)
}

// Post dispatches signup, signin and signout
// @Summary      Sign up, sign in or sign out
// @Description  The action field selects the operation. Signup and signin set the session cookie; signout clears it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body AuthRequest true "Action and credentials"
// @Success      200 {object} UserResponse "Signed in (signout returns {ok:true})"
// @Success      201 {object} UserResponse "Signed up"
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      500 {object} httputil.ErrorResponse "Server misconfiguration or internal error"
// @Router       /auth [post]
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req AuthRequest
	if err := httputil.DecodeJSON(r, &req, maxAuthBody); err != nil {
		logger.Warn("invalid auth request body", "error", err)
		httputil.RespondError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "":
		httputil.RespondError(w, "Missing action", http.StatusBadRequest)
	case "signup":
		h.signup(w, r, req)
	case "signin":
		h.signin(w, r, req)
	case "signout":
		h.service.Signout(r.Context(), TokenFromRequest(r))
		h.cookies.Clear(w)
		httputil.RespondJSON(w, OKResponse{OK: true}, http.StatusOK)
	default:
		httputil.RespondError(w, "Unsupported action", http.StatusBadRequest)
	}
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request, req AuthRequest) {
	session, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, "signup", err)
		return
	}

	logging.FromContext(r.Context()).Info("user signed up", "user_id", session.User.ID)

	h.cookies.Attach(w, session.Token)
	httputil.RespondJSON(w, UserResponse{User: &session.User}, http.StatusCreated)
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request, req AuthRequest) {
	session, err := h.service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, r, "signin", err)
		return
	}

	logging.FromContext(r.Context()).Info("user signed in", "user_id", session.User.ID)

	h.cookies.Attach(w, session.Token)
	httputil.RespondJSON(w, UserResponse{User: &session.User}, http.StatusOK)
}

// respondServiceError maps the error taxonomy onto status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	logger := logging.FromContext(r.Context()).WithFields(map[string]any{"action": action})

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Warn("validation failed", "error", verr.Message)
		httputil.RespondError(w, verr.Message, http.StatusBadRequest)
	case errors.Is(err, user.ErrDuplicateEmail):
		logger.Warn("email already registered")
		httputil.RespondError(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, ErrInvalidCredentials):
		logger.Warn("invalid credentials")
		httputil.RespondError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, config.ErrConfig):
		logger.Error("server misconfigured", "error", err)
		httputil.RespondError(w, "Server misconfigured", http.StatusInternalServerError)
	default:
		logger.Error("auth request failed", "error", err)
		httputil.RespondError(w, "Request failed", http.StatusInternalServerError)
	}
}
