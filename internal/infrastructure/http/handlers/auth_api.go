package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/alchemorsel/mealplan/internal/domain/user"
	"github.com/alchemorsel/mealplan/internal/infrastructure/security"
	"github.com/alchemorsel/mealplan/internal/ports/outbound"
	"github.com/alchemorsel/mealplan/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthAPIHandlers handles token and profile requests
type AuthAPIHandlers struct {
	base
	users       outbound.UserRepository
	authService *security.AuthService
}

// NewAuthAPIHandlers creates a new authentication API handlers instance
func NewAuthAPIHandlers(
	users outbound.UserRepository,
	authService *security.AuthService,
	validator *security.ValidationService,
	logger *zap.Logger,
) *AuthAPIHandlers {
	return &AuthAPIHandlers{
		base:        newBase(validator, logger.Named("auth_api")),
		users:       users,
		authService: authService,
	}
}

// TokenRequest asks for a token on behalf of an existing user
type TokenRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *UserResponse `json:"user"`
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Tier      user.Tier `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID().String(),
		Name:      u.Name(),
		Email:     u.Email(),
		Tier:      u.Tier(),
		CreatedAt: u.CreatedAt(),
	}
}

// IssueToken handles POST /api/v1/auth/token. It is mounted in development
// only; production tokens come from the identity provider sharing the secret.
func (h *AuthAPIHandlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.findUser(r, uuid.MustParse(req.UserID))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.authService.GenerateAccessToken(u.ID(), u.Email())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Issued development token", zap.String("user_id", req.UserID))
	h.writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        newUserResponse(u),
	})
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthAPIHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.findUser(r, owner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (h *AuthAPIHandlers) findUser(r *http.Request, id uuid.UUID) (*user.User, error) {
	u, err := h.users.FindByID(r.Context(), id)
	if stderrors.Is(err, outbound.ErrNotFound) {
		return nil, errors.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.NewDatabaseError("find user", err)
	}
	return u, nil
}
