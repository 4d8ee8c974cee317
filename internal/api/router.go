package api

import (
	"net/http"
	"time"

	"crucible/internal/api/handler"
	"crucible/internal/api/middleware"
	"crucible/internal/common"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Submissions handler.SubmissionService
	Contests    handler.ContestService
	Questions   handler.QuestionService
	TestCases   handler.TestCaseService
	Admins      handler.AdminService
}

// RequestTimeout caps every HTTP request. Submissions run all test cases in
// the sandbox within one request, so it is generous.
const RequestTimeout = 5 * time.Minute

func NewRouter(
	services Services,
	tokenAuth *jwtauth.JWTAuth,
	healthServer *health.Server,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(RequestTimeout))

	// Verifier only parses the bearer token; routes that need a caller add
	// middleware.Authenticator.
	r.Use(jwtauth.Verifier(tokenAuth))

	r.Get("/health", healthHandler(healthServer))

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/submissions", handler.NewSubmissionHandler(services.Submissions, logger).RegisterRoutes)
		v1.Route("/contests", handler.NewContestHandler(services.Contests, logger).RegisterRoutes)
		v1.Route("/questions", handler.NewQuestionHandler(services.Questions, logger).RegisterRoutes)
		v1.Route("/testcases", handler.NewTestCaseHandler(services.TestCases, logger).RegisterRoutes)
		v1.Route("/admin", handler.NewAdminHandler(services.Admins, logger).RegisterRoutes)
	})

	return r
}

// healthHandler reports the overall serving status kept by the gRPC health
// server, so HTTP and gRPC probes agree.
func healthHandler(hs *health.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := hs.Check(r.Context(), &healthpb.HealthCheckRequest{})
		if err != nil {
			common.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}

		body, err := protojson.Marshal(resp)
		if err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "failed to encode health status")
			return
		}

		status := http.StatusOK
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write(body)
	}
}
