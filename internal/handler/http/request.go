package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/response"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

// decodeJSON reads the request body into dst and answers 400 when it is not
// valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Debug(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	slog.Debug(op+" decode error", "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}

// pathID returns the named URL parameter, answering 400 for malformed ids.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if !validator.IsValidID(id) {
		response.BadRequest(w, "Invalid "+name, map[string]string{name: name + " must be a valid identifier"})
		return "", false
	}
	return id, true
}

// queryReader parses optional query parameters and collects malformed ones.
type queryReader struct {
	values url.Values
	errs   validator.ValidationErrors
}

func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{values: r.URL.Query()}
}

func (q *queryReader) text(key string) *string {
	v := q.values.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func (q *queryReader) date(key string) *string {
	v := q.text(key)
	if v != nil {
		if _, ok := validator.IsValidDate(*v); !ok {
			q.errs = q.errs.Add(key, key+" must be in YYYY-MM-DD format")
		}
	}
	return v
}

func (q *queryReader) flag(key string) *bool {
	v := q.values.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.errs = q.errs.Add(key, key+" must be true or false")
		return nil
	}
	return &b
}

func (q *queryReader) number(key string) int {
	v := q.values.Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		q.errs = q.errs.Add(key, key+" must be an integer")
		return 0
	}
	return n
}

// params reads skip and limit, applying the default limit.
func (q *queryReader) params() pagination.Params {
	p := pagination.Params{Skip: q.number("skip"), Limit: q.number("limit")}
	for _, e := range p.Validate() {
		q.errs = q.errs.Add(e.Field, e.Message)
	}
	return p
}

// done answers 422 when any parameter was malformed.
func (q *queryReader) done(w http.ResponseWriter) bool {
	if len(q.errs) > 0 {
		response.HandleError(w, q.errs)
		return false
	}
	return true
}
