package http

import (
	"context"
	"net/http"
	"net/url"
	"time"

	applog "familybudget/internal/log"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the store when it supports pinging.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "not_checked"
	}

	if s.ledger != nil && s.ledger.ReadOnly() {
		checks["writes"] = "read_only"
	} else {
		checks["writes"] = "ok"
	}
	if s.exports != nil && s.exports.Async() {
		checks["export_queue"] = "ok"
	} else {
		checks["export_queue"] = "not_configured"
	}
	checks["security"] = s.security.snapshot()

	NewJSONResponse().Status(httpStatus).JSON(map[string]interface{}{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// requireOwner writes a 400 and returns false when the owner header is
// missing or malformed.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := ownerFrom(r)
	if !ok {
		BadRequestError("missing or invalid " + ownerHeader + " header").Write(w)
		return "", false
	}
	return owner, true
}

// writeError maps err to a response. Server-side failures are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		ctx := r.Context()
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Request failed", err,
			applog.ComponentHTTP, op, applog.NewFields())
	}
	ErrorFor(err).Write(w)
}

// mergedParams reads body fields first and falls back to the query string.
type mergedParams struct {
	body  *RequestBodyParser
	query url.Values
}

func (m mergedParams) Get(key string) string {
	if m.body != nil && m.body.Has(key) {
		return m.body.Get(key)
	}
	return sanitizeInput(m.query.Get(key))
}

// requestParams returns the parameters of r. Bodies are only read for
// methods that carry one.
func requestParams(r *http.Request) (paramGetter, error) {
	query := r.URL.Query()
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
		return mergedParams{query: query}, nil
	}
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return mergedParams{body: p, query: query}, nil
}
