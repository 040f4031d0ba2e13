// internal/auth/handlers.go
package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	httpserver "github.com/geijin5/APSAR-Tracker-sub001/internal/http"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"
)

type tokenResponse struct {
	Token string            `json:"token"`
	User  models.PublicView `json:"user"`
}

// POST /auth/register
// Body: { "firstName": "...", "lastName": "...", "username": "...", "password": "...", "role": "member" }
// The client-supplied role is honored only when the caller is an
// authenticated admin; anonymous registration always yields a member.
func RegisterHandler(store repo.Store, tm *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FirstName string      `json:"firstName"`
			LastName  string      `json:"lastName"`
			Username  string      `json:"username"`
			Password  string      `json:"password"`
			Role      models.Role `json:"role"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httpserver.Error(w, req, apperr.Validation("bad json"))
			return
		}
		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)
		username := strings.ToLower(strings.TrimSpace(body.Username))
		if body.FirstName == "" || body.LastName == "" {
			httpserver.Error(w, req, apperr.Validation("first and last name required"))
			return
		}
		if len(username) < 3 || len(username) > 20 {
			httpserver.Error(w, req, apperr.Validation("username must be 3-20 characters"))
			return
		}
		if len(body.Password) < 6 {
			httpserver.Error(w, req, apperr.Validation("password must be at least 6 characters"))
			return
		}

		role := models.RoleMember
		if caller, ok := UserFromContext(req.Context()); ok && caller.Role == models.RoleAdmin && body.Role != "" {
			if !body.Role.Valid() {
				httpserver.Error(w, req, apperr.Validation("unknown role"))
				return
			}
			role = body.Role
		}

		phc, err := HashPassword(body.Password, DefaultArgonParams())
		if err != nil {
			httpserver.Error(w, req, apperr.Internal("hash error", err))
			return
		}
		u := &models.User{
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Username:     username,
			PasswordHash: phc,
			Role:         role,
			Active:       true,
		}
		if err := store.CreateUser(req.Context(), u); err != nil {
			httpserver.Error(w, req, err)
			return
		}
		token, err := tm.Generate(u)
		if err != nil {
			httpserver.Error(w, req, apperr.Internal("token error", err))
			return
		}
		httpserver.JSON(w, http.StatusCreated, tokenResponse{Token: token, User: u.Public()})
	}
}

// POST /auth/login
// Body: { "username": "...", "password": "..." }
// Unknown user and wrong password fail identically.
func LoginHandler(store repo.Store, tm *TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httpserver.Error(w, req, apperr.Validation("bad json"))
			return
		}
		username := strings.ToLower(strings.TrimSpace(body.Username))
		if username == "" || body.Password == "" {
			httpserver.Error(w, req, apperr.Unauthenticated("invalid credentials"))
			return
		}
		u, err := store.GetUserByUsername(req.Context(), username)
		if err != nil {
			httpserver.Error(w, req, apperr.Unauthenticated("invalid credentials"))
			return
		}
		if !VerifyPassword(body.Password, u.PasswordHash) {
			httpserver.Error(w, req, apperr.Unauthenticated("invalid credentials"))
			return
		}
		if !u.Active {
			httpserver.Error(w, req, apperr.Unauthorized("account inactive"))
			return
		}
		token, err := tm.Generate(u)
		if err != nil {
			httpserver.Error(w, req, apperr.Internal("token error", err))
			return
		}
		httpserver.JSON(w, http.StatusOK, tokenResponse{Token: token, User: u.Public()})
	}
}

// GET /auth/me
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		u, ok := UserFromContext(req.Context())
		if !ok {
			httpserver.Error(w, req, apperr.Unauthenticated("authentication required"))
			return
		}
		httpserver.JSON(w, http.StatusOK, u.Public())
	}
}

// PUT /auth/me
// Body: any of { "firstName", "lastName", "password" }. Role and active
// flag are not self-service.
func UpdateMeHandler(store repo.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		u, ok := UserFromContext(req.Context())
		if !ok {
			httpserver.Error(w, req, apperr.Unauthenticated("authentication required"))
			return
		}
		var body struct {
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			Password  *string `json:"password"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httpserver.Error(w, req, apperr.Validation("bad json"))
			return
		}
		if body.FirstName != nil {
			if strings.TrimSpace(*body.FirstName) == "" {
				httpserver.Error(w, req, apperr.Validation("first name cannot be empty"))
				return
			}
			u.FirstName = strings.TrimSpace(*body.FirstName)
		}
		if body.LastName != nil {
			if strings.TrimSpace(*body.LastName) == "" {
				httpserver.Error(w, req, apperr.Validation("last name cannot be empty"))
				return
			}
			u.LastName = strings.TrimSpace(*body.LastName)
		}
		if body.Password != nil {
			if len(*body.Password) < 6 {
				httpserver.Error(w, req, apperr.Validation("password must be at least 6 characters"))
				return
			}
			phc, err := HashPassword(*body.Password, DefaultArgonParams())
			if err != nil {
				httpserver.Error(w, req, apperr.Internal("hash error", err))
				return
			}
			u.PasswordHash = phc
		}
		if err := store.UpdateUser(req.Context(), u); err != nil {
			httpserver.Error(w, req, err)
			return
		}
		httpserver.JSON(w, http.StatusOK, u.Public())
	}
}

// POST /auth/push-tokens
// Registers a device token on the user record. Delivery is handled by
// an external push provider; this only stores the token.
func PushTokenHandler(store repo.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		u, ok := UserFromContext(req.Context())
		if !ok {
			httpserver.Error(w, req, apperr.Unauthenticated("authentication required"))
			return
		}
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.Token) == "" {
			httpserver.Error(w, req, apperr.Validation("token required"))
			return
		}
		if err := store.AddPushToken(req.Context(), u.ID, strings.TrimSpace(body.Token)); err != nil {
			httpserver.Error(w, req, err)
			return
		}
		httpserver.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
