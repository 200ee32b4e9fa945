package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brewvote/server/internal/domain/fault"
	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const typeBase = "https://brewvote.app/problems/"

// ProblemDetails is an RFC 7807 body. Error and Code are extension members
// the voter and admin frontends read directly.
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Error    string            `json:"error"`
	Code     string            `json:"code,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string]string) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write renders a problem and logs the cause: 5xx at error, 4xx at warn.
// Causes are only exposed as detail in development and test.
func Write(w http.ResponseWriter, r *http.Request, status int, code, message string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typeFor(code),
		Title:  http.StatusText(status),
		Status: status,
		Error:  message,
		Code:   code,
	}
	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil && (env == "development" || env == "test") {
		problem.Detail = err.Error()
	}
	if r != nil {
		problem.Instance = r.URL.Path
		logProblem(r, problem, err)
	}

	WriteProblem(w, problem)
}

// FromError maps a classified domain error to its HTTP status. Unclassified
// errors are internal.
func FromError(w http.ResponseWriter, r *http.Request, err error, env string) {
	status, message := StatusFor(err)
	Write(w, r, status, fault.CodeOf(err), message, err, env)
}

// StatusFor returns the status and the message safe to show the caller.
func StatusFor(err error) (int, string) {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch fe.Kind {
	case fault.KindNotFound:
		return http.StatusNotFound, messageOr(fe.Message, "Not found")
	case fault.KindForbidden:
		return http.StatusForbidden, "Not authorized"
	case fault.KindValidation, fault.KindConflict, fault.KindInvariant:
		return http.StatusBadRequest, fe.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Internal Server Error","status":500,"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}

func logProblem(r *http.Request, problem ProblemDetails, err error) {
	if err == nil {
		return
	}
	logger := zerolog.Ctx(r.Context())
	var event *zerolog.Event
	switch {
	case problem.Status >= 500:
		event = logger.Error()
	case problem.Status >= 400:
		event = logger.Warn()
	default:
		return
	}
	event.
		Err(err).
		Int("status", problem.Status).
		Str("code", problem.Code).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg(problem.Error)
}

func typeFor(code string) string {
	if code == "" {
		return "about:blank"
	}
	return typeBase + code
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
