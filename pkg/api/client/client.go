package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Client provides typed access to the liftsplit API for interactive tools.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents an error response from the API.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e APIError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg = strings.TrimSpace(msg + " (" + strings.Join(parts, "; ") + ")")
	}
	if msg == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, msg)
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case url.Values:
		reader = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, reader, contentType, token, v)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType, token string, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return extractError(resp.StatusCode, resp.Body)
	}
	if v == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func extractError(status int, body io.Reader) APIError {
	apiErr := APIError{Status: status}
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Error  string       `json:"error"`
		Fields []FieldError `json:"fields"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(payload.Error)
	apiErr.Fields = payload.Fields
	return apiErr
}

// User reflects API user payloads.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Token is the payload returned by login.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Split reflects API split payloads. Workouts is only populated by GetSplit.
type Split struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Workouts    []Workout `json:"workouts,omitempty"`
}

// Workout reflects API workout payloads.
type Workout struct {
	ID        int64     `json:"id"`
	SplitID   int64     `json:"split_id"`
	Name      string    `json:"name"`
	Sets      *int      `json:"sets"`
	Reps      *int      `json:"reps"`
	Weight    *float64  `json:"weight"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// SplitInput is used for create and update. Nil fields are omitted.
type SplitInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// WorkoutInput is used for create and update. Nil fields are omitted.
type WorkoutInput struct {
	Name   *string  `json:"name,omitempty"`
	Sets   *int     `json:"sets,omitempty"`
	Reps   *int     `json:"reps,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Notes  *string  `json:"notes,omitempty"`
}

// ListOptions maps onto the limit, skip and search query parameters.
type ListOptions struct {
	Limit  int
	Skip   int
	Search string
}

func (o ListOptions) query() string {
	values := url.Values{}
	if o.Limit > 0 {
		values.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Skip > 0 {
		values.Set("skip", strconv.Itoa(o.Skip))
	}
	if s := strings.TrimSpace(o.Search); s != "" {
		values.Set("search", s)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	var user User
	payload := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, "", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	var token Token
	form := url.Values{"username": {username}, "password": {password}}
	if err := c.do(ctx, http.MethodPost, "/auth/login", form, "", &token); err != nil {
		return Token{}, err
	}
	return token, nil
}

// Me returns the user owning token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListSplits returns the caller's splits.
func (c *Client) ListSplits(ctx context.Context, token string, opts ListOptions) ([]Split, error) {
	var splits []Split
	if err := c.do(ctx, http.MethodGet, "/splits"+opts.query(), nil, token, &splits); err != nil {
		return nil, err
	}
	return splits, nil
}

// CreateSplit creates a split.
func (c *Client) CreateSplit(ctx context.Context, token string, input SplitInput) (Split, error) {
	var split Split
	if err := c.do(ctx, http.MethodPost, "/splits", input, token, &split); err != nil {
		return Split{}, err
	}
	return split, nil
}

// GetSplit returns a split with its workouts.
func (c *Client) GetSplit(ctx context.Context, token string, splitID int64) (Split, error) {
	var split Split
	if err := c.do(ctx, http.MethodGet, splitPath(splitID), nil, token, &split); err != nil {
		return Split{}, err
	}
	return split, nil
}

// UpdateSplit changes the supplied fields of a split.
func (c *Client) UpdateSplit(ctx context.Context, token string, splitID int64, input SplitInput) (Split, error) {
	var split Split
	if err := c.do(ctx, http.MethodPut, splitPath(splitID), input, token, &split); err != nil {
		return Split{}, err
	}
	return split, nil
}

// DeleteSplit removes a split and its workouts.
func (c *Client) DeleteSplit(ctx context.Context, token string, splitID int64) error {
	return c.do(ctx, http.MethodDelete, splitPath(splitID), nil, token, nil)
}

// ListWorkouts returns the workouts of a split.
func (c *Client) ListWorkouts(ctx context.Context, token string, splitID int64, opts ListOptions) ([]Workout, error) {
	var workouts []Workout
	if err := c.do(ctx, http.MethodGet, splitPath(splitID)+"/workouts"+opts.query(), nil, token, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// CreateWorkout adds a workout to a split.
func (c *Client) CreateWorkout(ctx context.Context, token string, splitID int64, input WorkoutInput) (Workout, error) {
	var workout Workout
	if err := c.do(ctx, http.MethodPost, splitPath(splitID)+"/workouts", input, token, &workout); err != nil {
		return Workout{}, err
	}
	return workout, nil
}

// GetWorkout returns one workout.
func (c *Client) GetWorkout(ctx context.Context, token string, splitID, workoutID int64) (Workout, error) {
	var workout Workout
	if err := c.do(ctx, http.MethodGet, workoutPath(splitID, workoutID), nil, token, &workout); err != nil {
		return Workout{}, err
	}
	return workout, nil
}

// UpdateWorkout changes the supplied fields of a workout.
func (c *Client) UpdateWorkout(ctx context.Context, token string, splitID, workoutID int64, input WorkoutInput) (Workout, error) {
	var workout Workout
	if err := c.do(ctx, http.MethodPut, workoutPath(splitID, workoutID), input, token, &workout); err != nil {
		return Workout{}, err
	}
	return workout, nil
}

// DeleteWorkout removes a workout.
func (c *Client) DeleteWorkout(ctx context.Context, token string, splitID, workoutID int64) error {
	return c.do(ctx, http.MethodDelete, workoutPath(splitID, workoutID), nil, token, nil)
}

// Health reports whether the API and its database are up.
func (c *Client) Health(ctx context.Context) (string, error) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, "", &payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

func splitPath(id int64) string {
	return "/splits/" + strconv.FormatInt(id, 10)
}

func workoutPath(splitID, workoutID int64) string {
	return splitPath(splitID) + "/workouts/" + strconv.FormatInt(workoutID, 10)
}
