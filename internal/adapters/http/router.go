package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nparshin/product-discovery/internal/core/domain"
	"github.com/nparshin/product-discovery/internal/core/ports"
	"github.com/nparshin/product-discovery/internal/observability/metrics"
)

const serviceName = "api"

// TrafficConfig bounds inbound load before requests reach the pipeline.
type TrafficConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
}

type Router struct {
	searcher ports.ProductSearcher
	catalog  ports.ProductCatalog
	metrics  *metrics.HTTPServerMetrics
	traffic  TrafficConfig
}

func NewRouter(
	searcher ports.ProductSearcher,
	catalog ports.ProductCatalog,
	httpMetrics *metrics.HTTPServerMetrics,
	traffic TrafficConfig,
) *Router {
	return &Router{
		searcher: searcher,
		catalog:  catalog,
		metrics:  httpMetrics,
		traffic:  traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/products", rt.products)
	mux.HandleFunc("/v1/products/", rt.productByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, 100*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// search accepts POST {"query": "..."} and GET ?q=... for quick probes.
func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	var query string
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		query = req.Query
	case http.MethodGet:
		query = r.URL.Query().Get("query")
		if query == "" {
			query = r.URL.Query().Get("q")
		}
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	start := time.Now()
	resp, err := rt.searcher.Search(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	rt.recordSearch(resp, time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) recordSearch(resp *domain.SearchResponse, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordSearchObservation(serviceName, "/v1/search", len(resp.Results), duration)
	rt.metrics.RecordGraphFilter(serviceName, resp.Stats.GraphFilterApplied)
	if resp.Stats.GraphDegraded {
		rt.metrics.RecordDegraded(serviceName, "graph")
	}
	if resp.Stats.AnswerDegraded {
		rt.metrics.RecordDegraded(serviceName, "generation")
	}
}

func (rt *Router) products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.createProduct(w, r)
	case http.MethodGet:
		rt.listProducts(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) createProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := rt.catalog.Create(r.Context(), &p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductListFilter{
		Skip:     queryInt(r, "skip"),
		Limit:    queryInt(r, "limit"),
		Category: r.URL.Query().Get("category"),
	}

	products, err := rt.catalog.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (rt *Router) productByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product id must be a positive integer"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := rt.catalog.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPatch:
		var upd domain.ProductUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		p, err := rt.catalog.Update(r.Context(), id, upd)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
