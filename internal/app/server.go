package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/session"
)

// Handler returns the HTTP API. Request contexts carry the app logger.
//
//	POST /sessions                        create a session, computed
//	GET  /sessions/{id}/fields/{field}    one field
//	PUT  /sessions/{id}/fields/{field}    set an input: {"value": ...}
//	GET  /sessions/{id}/pages/{page}      every field of a page
//	GET  /health                          liveness
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", a.createSession)
	mux.HandleFunc("GET /sessions/{id}/fields/{field}", a.getField)
	mux.HandleFunc("PUT /sessions/{id}/fields/{field}", a.putField)
	mux.HandleFunc("GET /sessions/{id}/pages/{page}", a.getPage)
	mux.HandleFunc("GET /health", a.healthHandler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := a.logger.With("method", r.Method, "path", r.URL.Path)
		logger.Debug("API request.")
		mux.ServeHTTP(w, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
	})
}

type createSessionRequest struct {
	Aircraft string `json:"aircraft,omitempty"`
}

type sessionResponse struct {
	ID       string    `json:"id"`
	Aircraft string    `json:"aircraft,omitempty"`
	Created  time.Time `json:"created"`
}

type setFieldRequest struct {
	Value any `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	s := a.calc.Factory.New(ctx)
	if req.Aircraft != "" {
		if a.calc.AircraftField == "" {
			writeError(w, http.StatusBadRequest, errors.New("no aircraft selection available"))
			return
		}
		if err := s.Set(ctx, a.calc.AircraftField, req.Aircraft); err != nil {
			writeError(w, statusOf(err), err)
			return
		}
	}
	if err := s.ComputeAll(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := a.store.Put(ctx, s); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	ctxlog.FromContext(ctx).Info("Session created.", "session", s.ID(), "aircraft", s.Aircraft())
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID(), Aircraft: s.Aircraft(), Created: s.Created()})
}

func (a *App) getField(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(w, r)
	if !ok {
		return
	}
	view, err := s.View(r.PathValue("field"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// putField sets an input and answers with the recomputed field. Values that
// fail validation are stored and reported through the field's error, not
// as an HTTP error.
func (a *App) putField(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(w, r)
	if !ok {
		return
	}
	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	id := r.PathValue("field")
	if err := s.Set(r.Context(), id, req.Value); err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	view, err := s.View(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *App) getPage(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(w, r)
	if !ok {
		return
	}
	name := r.PathValue("page")
	views, err := s.Outputs(name)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	page, _ := a.calc.Program.Page(name)
	writeJSON(w, http.StatusOK, pageReport{Page: name, Title: page.Title, Fields: views})
}

func (a *App) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := a.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return nil, false
	}
	return s, true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrUnknownField),
		errors.Is(err, session.ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotInput):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// serve runs the HTTP API, and the weather feed when configured, until ctx
// is cancelled.
func (a *App) serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	addr := fmt.Sprintf(":%d", a.config.ServePort)
	srv := &http.Server{Addr: addr, Handler: a.Handler()}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("🚀 API server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("API server failed: %w", err)
		}
	}()
	if a.config.WeatherURL != "" {
		go func() {
			if err := a.runWeatherFeed(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("API server shutdown failed", "error", serr)
	}
	logger.Info("🏁 API server stopped.")
	return err
}
