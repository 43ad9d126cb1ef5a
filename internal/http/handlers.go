package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bankist/internal/bank"
	"bankist/internal/journal"
	applog "bankist/internal/log"
	"bankist/internal/middleware/trace"
	"bankist/internal/ui"
)

const (
	tmplIndex     = "index.html"
	tmplApp       = "app"
	tmplMovements = "movements"
)

const (
	activityLimit = 20
	// activityScan bounds how far back the journal is searched for the
	// caller's account.
	activityScan = 500
)

type actionFunc func(ctx context.Context, s bank.Session, in ui.InputReader, p ui.Presenter) (bank.Outcome, error)

func (s *Server) toggleSort(ctx context.Context, sess bank.Session, _ ui.InputReader, p ui.Presenter) (bank.Outcome, error) {
	return s.controller.ToggleSort(ctx, sess, p)
}

// handleAction runs one user action against the caller's session. A
// refused action answers 204 so nothing on the page is swapped; the
// reason travels as a notification.
func (s *Server) handleAction(op, form, tmpl string, run actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if resp := RequirePOST(r); resp != nil {
			resp.Write(w)
			return
		}

		in, err := ParseActionInput(r)
		if err != nil {
			BadRequestError("Invalid request format").Write(w)
			return
		}

		sess, err := s.sessions.Ensure(w, r)
		if err != nil {
			s.logger.Failure(ctx, "Failed to start session", err)
			InternalServerError("Session unavailable").Write(w)
			return
		}

		sess.mu.Lock()
		out, err := run(ctx, sess.state, in, sess.presenter)
		if err == nil {
			sess.setState(out.Session)
		}
		view := sess.presenter.snapshot()
		sess.mu.Unlock()

		resp := NewHTMXResponse()
		if in.Cleared() && form != "" {
			resp.TriggerFormReset(form)
		}

		if err != nil {
			reason, ok := bank.ReasonOf(err)
			if !ok {
				s.metrics.failed(op)
				applog.FromContext(ctx).Failure(ctx, "Action failed", err, applog.FieldOperation, op)
				InternalServerError("Something went wrong, reference " + trace.GetRequestID(ctx)).Write(w)
				return
			}
			s.metrics.refused(op)
			s.access.LogAction(ctx, op, sess.ID, sess.AccountID(), string(reason))
			resp.Status(http.StatusNoContent).
				TriggerErrorNotification(reason.Message()).
				Write(w)
			return
		}

		s.metrics.accepted(op)
		s.access.LogAction(ctx, op, sess.ID, out.Session.CurrentID, "")
		if out.LoanPending {
			resp.TriggerLoanPending().TriggerInfoNotification("Loan approved, it will be credited shortly")
		}
		s.render(w, r, resp, tmpl, &view)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	sess, err := s.sessions.Ensure(w, r)
	if err != nil {
		s.logger.Failure(r.Context(), "Failed to start session", err)
		InternalServerError("Session unavailable").Write(w)
		return
	}

	sess.mu.Lock()
	accountID := sess.state.CurrentID
	sess.setState(bank.LoggedOut())
	s.controller.LoggedOut(sess.presenter)
	view := sess.presenter.snapshot()
	sess.mu.Unlock()

	s.metrics.accepted(applog.OpLogout)
	s.access.LogAction(r.Context(), applog.OpLogout, sess.ID, accountID, "")
	s.render(w, r, NewHTMXResponse(), tmplApp, &view)
}

// refreshed re-derives the page for sess. A session whose account was
// closed elsewhere falls back to logged out.
func (s *Server) refreshed(sess *webSession) HTMLPresenter {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.LoggedIn() && !s.controller.Refresh(sess.state, sess.presenter) {
		sess.setState(bank.LoggedOut())
	}
	return sess.presenter.snapshot()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	sess, err := s.sessions.Ensure(w, r)
	if err != nil {
		s.logger.Failure(r.Context(), "Failed to start session", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	view := s.refreshed(sess)
	s.render(w, r, NewHTMXResponse(), tmplIndex, &view)
}

// handleApp re-renders the app after a live refresh notice.
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Ensure(w, r)
	if err != nil {
		s.logger.Failure(r.Context(), "Failed to start session", err)
		InternalServerError("Session unavailable").Write(w)
		return
	}
	view := s.refreshed(sess)
	s.render(w, r, NewHTMXResponse(), tmplApp, &view)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	s.hub.Serve(w, r, sess)
}

// handleActivity lists the latest journal entries of the logged-in account.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := s.sessions.Lookup(r)
	if !ok || sess.AccountID() == "" {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}
	accountID := sess.AccountID()

	var recent []journal.Event
	if s.activity != nil {
		var err error
		if recent, err = s.activity.Recent(ctx, activityScan); err != nil {
			applog.FromContext(ctx).Failure(ctx, "Failed to read journal", err, applog.FieldAccountID, accountID)
			http.Error(w, "activity unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	events := make([]journal.Event, 0, activityLimit)
	for _, e := range recent {
		if e.AccountID != accountID {
			continue
		}
		events = append(events, e)
		if len(events) == activityLimit {
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"account_id": accountID,
		"events":     events,
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, view *HTMLPresenter) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, view); err != nil {
		s.logger.Failure(r.Context(), "Template execution failed", err,
			applog.FieldComponent, applog.ComponentTemplate,
			"template", name)
		InternalServerError("Rendering failed").Write(w)
		return
	}
	resp.BodyHTML(buf.Bytes()).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	// A degraded journal does not block banking actions, so it is
	// reported without failing readiness.
	if err := s.health(ctx); err != nil {
		checks["journal"] = fmt.Sprintf("degraded: %v", err)
	} else {
		checks["journal"] = "ok"
	}

	checks["sessions"] = map[string]interface{}{
		"active": s.sessions.Size(),
		"live":   s.hub.Clients(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Mean response time\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP bank_actions_total User actions by outcome\n")
	fmt.Fprintf(w, "# TYPE bank_actions_total counter\n")
	for _, op := range actionOps {
		c := s.metrics.actions[op]
		fmt.Fprintf(w, "bank_actions_total{action=%q,result=\"accepted\"} %d\n", op, c.accepted.Load())
		fmt.Fprintf(w, "bank_actions_total{action=%q,result=\"refused\"} %d\n", op, c.refused.Load())
		fmt.Fprintf(w, "bank_actions_total{action=%q,result=\"failed\"} %d\n", op, c.failed.Load())
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "# HELP sessions_active Browser sessions held in memory\n")
	fmt.Fprintf(w, "# TYPE sessions_active gauge\n")
	fmt.Fprintf(w, "sessions_active %d\n\n", s.sessions.Size())

	fmt.Fprintf(w, "# HELP live_clients Open live refresh sockets\n")
	fmt.Fprintf(w, "# TYPE live_clients gauge\n")
	fmt.Fprintf(w, "live_clients %d\n\n", s.hub.Clients())

	fmt.Fprintf(w, "# HELP rate_limit_rejected_total Requests refused by the rate limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_rejected_total counter\n")
	fmt.Fprintf(w, "rate_limit_rejected_total %d\n\n", rateMetrics.Rejected)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.metrics.started).Seconds())
}
