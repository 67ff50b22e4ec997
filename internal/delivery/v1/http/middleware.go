package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/procesos/product-directory/internal/auth"
	"github.com/procesos/product-directory/pkg/e"
	"github.com/procesos/product-directory/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestAuthenticator устанавливает личность вызывающего по заголовкам запроса.
type RequestAuthenticator interface {
	AuthenticateRequest(ctx context.Context, header http.Header) context.Context
}

// RequestID берет X-Request-ID клиента или генерирует новый.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Recoverer превращает панику обработчика в 500.
func Recoverer(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Errorf(fmt.Errorf("panic: %v", rec), "request_id=%s %s %s\n%s",
						RequestIDFromContext(r.Context()), r.Method, r.URL.Path, debug.Stack())
					WriteError(w, e.ErrInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// AccessLog пишет одну строку на запрос.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			log.Infof("request_id=%s method=%s path=%s status=%d bytes=%d duration=%s",
				RequestIDFromContext(r.Context()), r.Method, r.URL.Path, rec.status, rec.bytes, time.Since(start))
		})
	}
}

// Authenticate устанавливает личность по bearer-токену. Запрос без валидного токена
// пропускается дальше без личности, отказ решает RequirePrincipal.
func Authenticate(authenticator RequestAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authenticator.AuthenticateRequest(r.Context(), r.Header)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePrincipal отвечает 401, если личность не установлена.
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			WriteError(w, e.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
