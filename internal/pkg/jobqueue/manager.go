package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
	"github.com/ManuelReschke/BaanBox/internal/pkg/env"
	"github.com/ManuelReschke/BaanBox/internal/pkg/mail"
	metrics "github.com/ManuelReschke/BaanBox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/BaanBox/internal/pkg/statistics"
)

// Manager owns the mail queue and the popularity counter flush.
type Manager struct {
	queue         *Queue
	flushInterval time.Duration
	stopFlush     context.CancelFunc
	mu            sync.Mutex
	running       bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
	managerMu     sync.RWMutex
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		m := NewManager(cache.GetClient(), env.GetEnvInt("JOBQUEUE_WORKERS", 3))
		managerMu.Lock()
		globalManager = m
		managerMu.Unlock()
	})
	return current()
}

func current() *Manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return globalManager
}

// NewManager builds a manager with every storefront job registered.
func NewManager(client *redis.Client, workers int) *Manager {
	q := NewQueue(client, workers)
	for jobType, h := range handlers {
		q.Handle(jobType, h)
	}
	return &Manager{
		queue:         q,
		flushInterval: time.Duration(env.GetEnvInt("POPULARITY_FLUSH_SECONDS", 60)) * time.Second,
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	ctx, cancel := context.WithCancel(context.Background())
	m.stopFlush = cancel
	metrics.StartFlusher(ctx, m.flushInterval)

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")
	if m.stopFlush != nil {
		m.stopFlush()
	}
	m.queue.Stop()
	m.running = false
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// handlers maps every job type to its work.
var handlers = map[JobType]Handler{
	JobTypeActivationMail:    handleActivationMail,
	JobTypeOrderConfirmation: handleOrderConfirmation,
	JobTypeStatisticsRefresh: handleStatisticsRefresh,
}

func handleActivationMail(_ context.Context, job *Job) error {
	p, err := ActivationMailPayloadFromMap(job.Payload)
	if err != nil {
		return err
	}
	return mail.SendActivation(p.To, mail.ActivationData{Name: p.Name, Link: p.Link})
}

func handleOrderConfirmation(_ context.Context, job *Job) error {
	p, err := OrderConfirmationPayloadFromMap(job.Payload)
	if err != nil {
		return err
	}
	return mail.SendOrderConfirmation(p.To, p.Data)
}

func handleStatisticsRefresh(_ context.Context, _ *Job) error {
	return statistics.UpdateStatisticsCache(repository.GetGlobalRepositories().Order)
}

// Dispatch queues a job on the running manager. Without running workers, or
// when Redis refuses the job, it runs in the calling goroutine instead.
func Dispatch(ctx context.Context, jobType JobType, payload map[string]interface{}) error {
	if m := current(); m != nil && m.IsRunning() {
		_, err := m.queue.EnqueueJob(ctx, jobType, payload)
		if err == nil {
			return nil
		}
		log.Warnf("[JobQueue] enqueue %s failed, running inline: %v", jobType, err)
	}

	h, ok := handlers[jobType]
	if !ok {
		return ErrUnknownJobType
	}
	return h(ctx, newJob(jobType, payload))
}

// SendActivationMail queues the activation mail of a new account.
func SendActivationMail(to string, data mail.ActivationData) error {
	p := ActivationMailPayload{To: to, Name: data.Name, Link: data.Link}
	return Dispatch(context.Background(), JobTypeActivationMail, p.ToMap())
}

// SendOrderConfirmation queues the confirmation mail of a committed order.
func SendOrderConfirmation(to string, data mail.OrderConfirmationData) error {
	payload, err := OrderConfirmationPayload{To: to, Data: data}.ToMap()
	if err != nil {
		return err
	}
	return Dispatch(context.Background(), JobTypeOrderConfirmation, payload)
}

// RefreshStatistics recounts the home page statistics.
func RefreshStatistics() {
	if err := Dispatch(context.Background(), JobTypeStatisticsRefresh, nil); err != nil {
		log.Warnf("[JobQueue] statistics refresh: %v", err)
	}
}
