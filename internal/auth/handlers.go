package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pysugar/social-nexus/internal/db/models"
	"gorm.io/gorm"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupHandler creates a user account and returns a session token.
func SignupHandler(gdb *gorm.DB, issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			writeError(w, http.StatusBadRequest, "Invalid email address")
			return
		}

		hash, err := HashPassword(req.Password)
		if errors.Is(err, ErrPasswordTooShort) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		user := models.User{
			ID:           uuid.New().String(),
			Email:        req.Email,
			PasswordHash: hash,
		}
		if err := gdb.Create(&user).Error; err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
				errors.Is(err, gorm.ErrDuplicatedKey) {
				writeError(w, http.StatusConflict, "Email already registered")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Printf("👤 New user signed up: %s", user.Email)
		issueToken(w, issuer, user.ID)
	}
}

// LoginHandler verifies credentials and returns a session token.
func LoginHandler(gdb *gorm.DB, issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		var user models.User
		if err := gdb.Where("email = ?", req.Email).First(&user).Error; err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if err := VerifyPassword(user.PasswordHash, req.Password); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		issueToken(w, issuer, user.ID)
	}
}

func issueToken(w http.ResponseWriter, issuer *Issuer, userID string) {
	token, err := issuer.IssueSession(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
