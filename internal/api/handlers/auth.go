package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohits-web03/dropvault/internal/api/middleware"
	"github.com/rohits-web03/dropvault/internal/common"
	"github.com/rohits-web03/dropvault/internal/models"
	"github.com/rohits-web03/dropvault/internal/services"
	"github.com/rohits-web03/dropvault/internal/utils"
)

const sessionTTL = 24 * time.Hour

// RegisterUser godoc
// @Summary Create a sender account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload "User registered successfully"
// @Failure 400 {object} utils.Payload "Invalid input or user already exists"
// @Router /api/v1/auth/sign-up [post]
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil {
		badRequest(w, "Invalid input")
		return
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = services.NormalizeEmail(input.Email)
	if input.Email == "" || input.Username == "" || input.Password == "" {
		badRequest(w, "Invalid input")
		return
	}

	ctx := r.Context()
	if _, err := h.users.GetByUsername(ctx, input.Username); err == nil {
		badRequest(w, "Username is already taken")
		return
	} else if !errors.Is(err, common.ErrNotFound) {
		h.writeError(w, r, err)
		return
	}

	_, err := h.users.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		badRequest(w, "User already exists with this email")
		return
	case !errors.Is(err, common.ErrNotFound):
		h.writeError(w, r, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.OK(w, http.StatusCreated, "User registered successfully", nil)
}

// Claims is the sender session token.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginUser godoc
// @Summary Log in as a sender
// @Description Sets an HttpOnly session cookie on success.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload "Login successful"
// @Failure 401 {object} utils.Payload "Invalid credentials"
// @Router /api/v1/auth/login [post]
func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &input); err != nil || input.Username == "" || input.Password == "" {
		badRequest(w, "Invalid input")
		return
	}

	invalid := func() {
		utils.Fail(w, http.StatusUnauthorized, "Invalid credentials", nil)
	}

	user, err := h.users.GetByUsername(r.Context(), strings.TrimSpace(input.Username))
	if errors.Is(err, common.ErrNotFound) {
		invalid()
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		invalid()
		return
	}

	now := time.Now()
	expiration := now.Add(sessionTTL)
	claims := &Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	isProd := h.cfg.IsProduction()
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tokenString,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})

	utils.OK(w, http.StatusOK, "Login successful", nil)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload "Logged out successfully"
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   h.cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.OK(w, http.StatusOK, "Logged out successfully", nil)
}
