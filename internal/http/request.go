package httpx

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/liftsplit/liftsplit/internal/domain"
	"github.com/liftsplit/liftsplit/internal/validation"
)

func readBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, validation.Field("body", "request body too large")
		}
		return nil, err
	}
	return body, nil
}

// pathID parses a numeric path variable.
func pathID(req *http.Request, name string) (int64, error) {
	raw := mux.Vars(req)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validation.Field(name, "must be an integer")
	}
	return id, nil
}

// listOptions reads limit, skip and search from the query string.
func listOptions(req *http.Request) (domain.ListOptions, error) {
	query := req.URL.Query()
	var opts domain.ListOptions
	var fields []validation.FieldError
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			fields = append(fields, validation.FieldError{Field: "limit", Message: "must be a non-negative integer"})
		}
		opts.Limit = limit
	}
	if raw := strings.TrimSpace(query.Get("skip")); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			fields = append(fields, validation.FieldError{Field: "skip", Message: "must be a non-negative integer"})
		}
		opts.Offset = skip
	}
	opts.Search = strings.TrimSpace(query.Get("search"))
	if len(fields) > 0 {
		return domain.ListOptions{}, &validation.Error{Fields: fields}
	}
	return opts, nil
}
