package httpx

import (
	"net/http"
	"strings"

	"github.com/liftsplit/liftsplit/internal/service/auth"
	"github.com/liftsplit/liftsplit/internal/validation"
)

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	body, err := readBody(w, req)
	if err != nil {
		r.writeServiceError(w, req, err, "")
		return
	}
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := r.validator.Decode(validation.Register, body, &payload); err != nil {
		r.writeServiceError(w, req, err, "")
		return
	}
	user, err := r.auth.Register(req.Context(), auth.RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		r.writeServiceError(w, req, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

// handleLogin accepts the OAuth2 password form: username and password fields.
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := req.ParseForm(); err != nil {
		writeValidationError(w, validation.Field("body", "must be form encoded"))
		return
	}
	username := strings.TrimSpace(req.PostForm.Get("username"))
	password := req.PostForm.Get("password")
	var fields []validation.FieldError
	if username == "" {
		fields = append(fields, validation.FieldError{Field: "username", Message: "is required"})
	}
	if password == "" {
		fields = append(fields, validation.FieldError{Field: "password", Message: "is required"})
	}
	if len(fields) > 0 {
		writeValidationError(w, &validation.Error{Fields: fields})
		return
	}
	_, token, err := r.auth.Login(req.Context(), username, password)
	if err != nil {
		r.writeServiceError(w, req, err, "")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
	})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, newUserResponse(currentUser(req)))
}
