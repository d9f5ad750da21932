package services

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/orientanurag/upnext-mvp/internal/config"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates operators (DJ/admin). Attendee identity stays an
// opaque user id; only the operator console logs in.
type AuthService struct {
	validator *ValidationHelper
	operators map[string]config.Operator
}

// LoginRequest represents the operator login payload
// @Description Operator login request
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"dj"`
	Password string `json:"password" validate:"required,min=6" example:"dj123"`
}

// AuthResponse represents the authentication response
// @Description Authentication response with bearer token
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func NewAuthService(operators []config.Operator) *AuthService {
	byName := make(map[string]config.Operator, len(operators))
	for _, op := range operators {
		byName[op.Username] = op
	}
	return &AuthService{
		validator: NewValidationHelper(),
		operators: byName,
	}
}

// Login handles operator authentication
// @Summary Operator login
// @Description Authenticate a DJ/admin and issue a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req LoginRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	operator, ok := s.operators[req.Username]
	if !ok {
		log.Printf("[AUTH] Login failed for unknown operator %q", req.Username)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(req.Password)); err != nil {
		log.Printf("[AUTH] Login failed for operator %q: bad password", req.Username)
		SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := generateJWT(operator.Username, operator.Role)
	if err != nil {
		log.Printf("[AUTH] Token generation failed for %q: %v", req.Username, err)
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[AUTH] Operator %q logged in with role %q", operator.Username, operator.Role)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Token:    token,
		Username: operator.Username,
		Role:     operator.Role,
	})
}

func generateJWT(username, role string) (string, error) {
	viper.SetDefault("jwt.expiry_hours", 24)
	expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour

	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(expiry).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}
