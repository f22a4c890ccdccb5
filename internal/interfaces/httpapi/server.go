package httpapi

import (
	"net/http"

	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

// RouterConfig carries everything the router needs besides the handler.
type RouterConfig struct {
	Authenticator      SessionAuthenticator
	Logger             *logging.Logger
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	InternalJobToken   string
	LoginLimiter       *IPRateLimiter
	Deploy             http.Handler
	Static             http.Handler
	PrimaryDomain      string
	EnableWWWRedirect  bool
}

func NewRouter(handler *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerPublicRoutes(mux, handler, cfg.LoginLimiter)
	registerSessionRoutes(mux, handler, cfg.Authenticator)
	registerAdminRoutes(mux, handler, cfg.Authenticator)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)
	registerSiteRoutes(mux, cfg.Deploy, cfg.Static)

	var root http.Handler = CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))
	if cfg.EnableWWWRedirect {
		root = WWWRedirect(cfg.PrimaryDomain, root)
	}
	return RequestTracing(RequestLogging(logger, root))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
