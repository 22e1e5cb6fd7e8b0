package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stagebook/internal/app/artists"
	"stagebook/internal/app/performances"
	"stagebook/internal/app/users"
	"stagebook/internal/logging"
	"stagebook/internal/models"
	"stagebook/internal/outreach"
	"stagebook/internal/sheets"
	"stagebook/internal/store"
)

const maxInputBytes = 1 << 20

type procedureKind int

const (
	query procedureKind = iota
	mutation
)

type access int

const (
	public access = iota
	protected
)

// call carries one procedure invocation.
type call struct {
	w     http.ResponseWriter
	r     *http.Request
	input json.RawMessage
	user  *models.User
}

type handlerFunc func(ctx context.Context, c *call) (any, error)

type procedure struct {
	kind   procedureKind
	access access
	handle handlerFunc
}

type resultBody struct {
	Data any `json:"data"`
}

type successEnvelope struct {
	Result resultBody `json:"result"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// rpcError is a failure with a wire code and HTTP status.
type rpcError struct {
	code    string
	status  int
	message string
	detail  string
}

func (e *rpcError) Error() string {
	return e.code + ": " + e.message
}

func newRPCError(code string, status int, message string) *rpcError {
	return &rpcError{code: code, status: status, message: message}
}

func badRequest(message string) *rpcError {
	return newRPCError("BAD_REQUEST", http.StatusBadRequest, message)
}

var (
	errUnauthorized       = newRPCError("UNAUTHORIZED", http.StatusUnauthorized, "please log in")
	errForbidden          = newRPCError("FORBIDDEN", http.StatusForbidden, "admin access required")
	errMethodNotSupported = newRPCError("METHOD_NOT_SUPPORTED", http.StatusMethodNotAllowed, "method not supported for this procedure")
)

func procedureNotFound(name string) *rpcError {
	return newRPCError("NOT_FOUND", http.StatusNotFound, fmt.Sprintf("no procedure named %q", name))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode unmarshals the call input into dst and validates its shape.
// An absent input decodes as an empty object.
func (c *call) decode(dst any) error {
	raw := c.input
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return badRequest("invalid input: " + err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

func readInput(r *http.Request) (json.RawMessage, error) {
	if r.Method == http.MethodGet {
		raw := r.URL.Query().Get("input")
		if raw == "" {
			return nil, nil
		}
		return json.RawMessage(raw), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInputBytes+1))
	if err != nil {
		return nil, badRequest("could not read request body")
	}
	if len(body) > maxInputBytes {
		return nil, badRequest("request body too large")
	}
	return json.RawMessage(strings.TrimSpace(string(body))), nil
}

// toRPCError maps domain and store errors onto wire codes.
func toRPCError(err error) *rpcError {
	var rerr *rpcError
	if errors.As(err, &rerr) {
		return rerr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return validationError(verrs)
	}

	switch {
	case errors.Is(err, store.ErrArtistNotFound),
		errors.Is(err, store.ErrPerformanceNotFound),
		errors.Is(err, store.ErrNoticeNotFound):
		return newRPCError("NOT_FOUND", http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidArtist),
		errors.Is(err, store.ErrInvalidPerformance),
		errors.Is(err, store.ErrInvalidNotice),
		errors.Is(err, store.ErrInvalidSetting),
		errors.Is(err, artists.ErrSearchTooShort),
		errors.Is(err, performances.ErrInvalidBatch):
		return badRequest(err.Error())
	case errors.Is(err, users.ErrInvalidPasscode):
		return newRPCError("UNAUTHORIZED", http.StatusUnauthorized, "invalid passcode")
	case errors.Is(err, store.ErrConstraintViolation):
		e := newRPCError("CONFLICT", http.StatusConflict, store.ErrConstraintViolation.Error())
		e.detail = constraintDetail(err)
		return e
	case errors.Is(err, store.ErrStoreUnavailable):
		return newRPCError("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, outreach.ErrOutreachDisabled),
		errors.Is(err, outreach.ErrEmptyTemplate),
		errors.Is(err, sheets.ErrExportDisabled):
		return newRPCError("PRECONDITION_FAILED", http.StatusPreconditionFailed, err.Error())
	}

	return newRPCError("INTERNAL_SERVER_ERROR", http.StatusInternalServerError, "internal server error")
}

func validationError(verrs validator.ValidationErrors) *rpcError {
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	e := badRequest("invalid input")
	e.detail = strings.Join(problems, "; ")
	return e
}

func constraintDetail(err error) string {
	msg := err.Error()
	marker := store.ErrConstraintViolation.Error() + ": "
	if idx := strings.Index(msg, marker); idx >= 0 {
		return msg[idx+len(marker):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeResult(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Result: resultBody{Data: data}})
}

func writeError(w http.ResponseWriter, r *http.Request, procedure string, err error) {
	rerr := toRPCError(err)

	logger := logging.WithContext(r.Context())
	event := logger.Warn()
	if rerr.status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("procedure", procedure).Str("code", rerr.code).Msg("procedure failed")

	writeJSON(w, rerr.status, errorEnvelope{Error: errorBody{Code: rerr.code, Message: rerr.message, Detail: rerr.detail}})
}

// dateInput accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
type dateInput struct {
	t        time.Time
	dateOnly bool
}

func (d *dateInput) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string")
	}
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.t = t
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.t, d.dateOnly = t, true
	return nil
}

// in resolves the date, placing bare dates at midnight in loc.
func (d *dateInput) in(loc *time.Location) time.Time {
	if d == nil {
		return time.Time{}
	}
	if d.dateOnly {
		return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
	}
	return d.t
}

type idInput struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}
