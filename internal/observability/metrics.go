package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/platform/envutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	writeOps       *CounterVec
	writeLatency   *HistogramVec
	writeConflicts *CounterVec
	writeRetries   *CounterVec

	quizSubmissions    *CounterVec
	quizScores         *HistogramVec
	attemptsAbandoned  *Counter
	lessonsCompleted   *Counter
	certificatesIssued *Counter
	rateLimited        *CounterVec

	postgresUp *Gauge
	redisUp    *Gauge
	redisPing  *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics registry. It returns nil when
// METRICS_ENABLED is off; every method on a nil *Metrics is a no-op.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered metrics set.
func New() *Metrics {
	latency := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	return &Metrics{
		apiRequests: NewCounterVec("lms_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("lms_api_request_duration_seconds", "API request latency in seconds by method/route/status.", []string{"method", "route", "status"}, latency),
		apiInflight: NewGauge("lms_api_inflight_requests", "In-flight API requests."),

		writeOps:       NewCounterVec("lms_write_operations_total", "Learning write operations by op/status.", []string{"op", "status"}),
		writeLatency:   NewHistogramVec("lms_write_operation_duration_seconds", "Learning write latency by op/status.", []string{"op", "status"}, latency),
		writeConflicts: NewCounterVec("lms_write_conflicts_total", "Storage conflicts by op.", []string{"op"}),
		writeRetries:   NewCounterVec("lms_write_retries_total", "Retried writes by op.", []string{"op"}),

		quizSubmissions:    NewCounterVec("lms_quiz_submissions_total", "Quiz submissions by quiz type and outcome.", []string{"quiz_type", "outcome"}),
		quizScores:         NewHistogramVec("lms_quiz_score_percent", "Submitted quiz scores.", []string{"quiz_type"}, []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}),
		attemptsAbandoned:  NewCounter("lms_quiz_attempts_abandoned_total", "Open attempts force-closed by a new start."),
		lessonsCompleted:   NewCounter("lms_lessons_completed_total", "Lesson completions (first completion only)."),
		certificatesIssued: NewCounter("lms_certificates_issued_total", "Certificates issued."),
		rateLimited:        NewCounterVec("lms_rate_limited_total", "Requests rejected by the rate limiter.", []string{"route"}),

		postgresUp: NewGauge("lms_postgres_up", "1 when the last database ping succeeded."),
		redisUp:    NewGauge("lms_redis_up", "1 when the last redis ping succeeded."),
		redisPing:  NewGauge("lms_redis_ping_seconds", "Latency of the last redis ping."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.writeOps, m.writeLatency, m.writeConflicts, m.writeRetries,
		m.quizSubmissions, m.quizScores, m.attemptsAbandoned, m.lessonsCompleted, m.certificatesIssued, m.rateLimited,
		m.postgresUp, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveWriteOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.writeOps.Inc(op, status)
	m.writeLatency.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncWriteConflict(op string) {
	if m == nil {
		return
	}
	m.writeConflicts.Inc(op)
}

func (m *Metrics) IncWriteRetry(op string) {
	if m == nil {
		return
	}
	m.writeRetries.Inc(op)
}

func (m *Metrics) ObserveQuizSubmission(quizType string, passed bool, score int) {
	if m == nil {
		return
	}
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	m.quizSubmissions.Inc(quizType, outcome)
	m.quizScores.Observe(float64(score), quizType)
}

func (m *Metrics) AddAbandonedAttempts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.attemptsAbandoned.Add(float64(n))
}

func (m *Metrics) IncLessonCompleted() {
	if m == nil {
		return
	}
	m.lessonsCompleted.Inc()
}

func (m *Metrics) IncCertificateIssued() {
	if m == nil {
		return
	}
	m.certificatesIssued.Inc()
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.Inc(route)
}

func scrapeInterval() time.Duration {
	return envutil.Duration("METRICS_SCRAPE_INTERVAL", 15*time.Second)
}

// StartPostgresCollector pings the database on an interval until ctx ends.
func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sqlDB.PingContext(ctx); err != nil {
					m.postgresUp.Set(0)
					if log != nil {
						log.Warn("metrics: database ping failed", "error", err)
					}
					continue
				}
				m.postgresUp.Set(1)
			}
		}
	}()
}

// StartRedisCollector pings rdb on an interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
