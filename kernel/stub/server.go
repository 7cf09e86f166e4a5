package stub

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"github.com/suntrap/buildboard/kernel/model"
	"github.com/suntrap/buildboard/kernel/store"
)

const (
	sessionName = "buildboard_session"
	sessionUser = "user_id"
)

type Options struct {
	// SessionKey signs the session cookie.
	SessionKey []byte
	// RequireSession rejects API calls without a session established by
	// /saml/login.
	RequireSession bool
	// FailAssign, when set, makes /api/assign answer 500 for matching requests.
	FailAssign func(model.AssignRequest) bool
}

// Server is a development backend serving a store over the dashboard's
// endpoints.
type Server struct {
	store    store.OperationStore
	sessions *sessions.CookieStore
	opts     Options
	router   chi.Router
}

func NewServer(s store.OperationStore, opts Options) *Server {
	if len(opts.SessionKey) == 0 {
		opts.SessionKey = []byte("buildboard-development-session-key")
	}
	srv := &Server{
		store:    s,
		sessions: sessions.NewCookieStore(opts.SessionKey),
		opts:     opts,
	}
	srv.sessions.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	srv.router = srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/saml/login", s.login)
	r.Post("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/me", s.me)
		r.Get("/build-log/{hostname}", s.buildLog)
		r.Route("/api", func(r chi.Router) {
			r.Get("/build-status", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, s.store.BuildStatus())
			})
			r.Get("/build-history/{date}", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, s.store.BuildHistory(chi.URLParam(r, "date")))
			})
			r.Get("/hostnames", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, s.store.Hostnames())
			})
			r.Get("/server-details", s.serverDetails)
			r.Post("/assign", s.assign)
			r.Get("/preconfigs", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, s.store.Preconfigs())
			})
			r.Get("/preconfigs/pushed", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, s.store.PushedPreconfigs())
			})
			r.Post("/push-preconfig", s.push)
		})
	})
	return r
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	user := s.store.User()
	session.Values[sessionUser] = user.ID
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	logrus.Infof("stub: session established for [%s]", user.Email)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionUser)
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.OperationResponse{Status: model.OperationSuccess, Message: "Logged out"})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.RequireSession {
			session, err := s.sessions.Get(r, sessionName)
			if err != nil || session.Values[sessionUser] == nil {
				writeError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.User())
}

func (s *Server) serverDetails(w http.ResponseWriter, r *http.Request) {
	hostname := r.URL.Query().Get("hostname")
	if hostname == "" {
		writeError(w, http.StatusBadRequest, "hostname is required")
		return
	}
	writeJSON(w, http.StatusOK, s.store.ServerDetails(hostname))
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var req model.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.opts.FailAssign != nil && s.opts.FailAssign(req) {
		writeError(w, http.StatusInternalServerError, "Failed to assign server")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Assign(req))
}

func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	var req model.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.store.Push(req))
}

func (s *Server) buildLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.store.BuildLog(chi.URLParam(r, "hostname"))))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logrus.Debugf("stub: %s %s -> %d", r.Method, r.URL.Path, ww.Status())
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("stub: unable to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": strings.TrimSpace(detail)})
}
