package deps

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/colocapp/colocourses/internal/catalog"
	"github.com/colocapp/colocourses/internal/hub"
	"github.com/colocapp/colocourses/internal/logger"
	"github.com/colocapp/colocourses/internal/metrics"
	"github.com/colocapp/colocourses/internal/registry"
	"github.com/colocapp/colocourses/internal/store"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Store    store.Store        // document store (redis or in-memory)
	Registry *registry.Registry // coloc lifecycle (create/join/validate)
	Hub      *hub.Hub           // realtime fan-out
	Catalog  *catalog.Catalog   // units, categories, code words
	Metrics  *metrics.Metrics

	RedisClient  *redis.Client       // nil in dev mode; readyz pings it when set
	PromGatherer prometheus.Gatherer // scrape source for /metrics

	TrustProxy   bool // resolve client IP from proxy headers
	CreateBurst  int  // coloc-creation rate limit burst per IP
	CreatePerMin int  // sustained coloc creations per IP per minute
}
