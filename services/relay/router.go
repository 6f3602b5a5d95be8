package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceRequestPath is the only route that accepts service requests.
const ServiceRequestPath = "/serviceRequest"

const maxRequestBody = 64 << 10

// Routes builds the chi router serving the relay, health, readiness and metrics endpoints.
// Unknown paths and methods other than POST on ServiceRequestPath answer 404.
func (r *Relay) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	allowed := r.allowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	// Preflights fall through to the router, which answers anything but POST with 404.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:     allowed,
		AllowedMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Accept", "Content-Type"},
		MaxAge:             int((10 * time.Minute).Seconds()),
		OptionsPassthrough: true,
	}))

	router.NotFound(handleNotFound)
	router.MethodNotAllowed(handleNotFound)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusOK, "ok")
	})
	router.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusOK, "ready")
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	router.Group(func(g chi.Router) {
		if r.rateLimit > 0 {
			g.Use(httprate.LimitByIP(r.rateLimit, time.Minute))
		}
		g.Post(ServiceRequestPath, r.handleServiceRequest)
	})

	return router
}

type serviceRequest struct {
	MachineID string `json:"machineId"`
}

func (r *Relay) handleServiceRequest(w http.ResponseWriter, req *http.Request) {
	body, err := decodeServiceRequest(http.MaxBytesReader(w, req.Body, maxRequestBody))
	if err != nil {
		r.logger.Info().Err(err).Msg("malformed service request body")
	}

	_, err = r.Submit(req.Context(), body.MachineID)
	status, msg := StatusFor(err)
	respondText(w, status, msg)
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	respondText(w, http.StatusNotFound, msgNotFound)
}

// decodeServiceRequest reads the JSON body. A body that is not an object leaves
// MachineID empty so validation rejects it.
func decodeServiceRequest(body io.Reader) (serviceRequest, error) {
	var req serviceRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return serviceRequest{}, err
	}
	return req, nil
}
