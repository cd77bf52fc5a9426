package database

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
	"github.com/SARVESHVARADKAR123/profile-service/internal/observability"
)

const (
	DefaultRetryDelay             = 5 * time.Second
	DefaultServerSelectionTimeout = 5 * time.Second
	DefaultMaxConnIdleTime        = 45 * time.Second
)

// DialFunc opens a client and verifies it can reach the server. A non-nil
// error means no usable client was produced.
type DialFunc func(ctx context.Context) (*mongo.Client, error)

// ConnectHook runs once after a connection is established.
type ConnectHook func(ctx context.Context, db *mongo.Database) error

type Options struct {
	URI          string
	DatabaseName string
	AppName      string

	// RetryDelay is the fixed wait between failed attempts.
	RetryDelay time.Duration

	// Dial replaces the default MongoDB dialer.
	Dial DialFunc

	// After replaces time.After for the retry wait.
	After func(time.Duration) <-chan time.Time
}

// Manager owns the MongoDB client. It connects in the background, retrying
// forever with a fixed delay, and reports readiness for request gating.
type Manager struct {
	opts Options
	log  *zap.Logger

	state  atomic.Int32
	client atomic.Pointer[mongo.Client]

	mu        sync.Mutex
	onConnect []ConnectHook
	observers []func(State)
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewManager(opts Options, log *zap.Logger) *Manager {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.After == nil {
		opts.After = time.After
	}

	m := &Manager{opts: opts, log: log}
	if m.opts.Dial == nil {
		m.opts.Dial = m.dialMongo
	}
	m.state.Store(int32(StateDisconnected))
	return m
}

// OnConnect registers a hook run after every successful connect.
func (m *Manager) OnConnect(h ConnectHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnect = append(m.onConnect, h)
}

// OnStateChange registers an observer notified on every state transition.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Manager) State() State { return State(m.state.Load()) }

func (m *Manager) Ready() bool { return m.State() == StateConnected }

// Database returns the configured database, or ErrUnavailable when no client
// has been established yet.
func (m *Manager) Database() (*mongo.Database, error) {
	c := m.client.Load()
	if c == nil {
		return nil, model.ErrUnavailable
	}
	return c.Database(m.opts.DatabaseName), nil
}

// Start launches the connect loop. It returns immediately.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		m.run(ctx)
	}()
}

func (m *Manager) run(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		m.setState(StateConnecting)
		m.log.Info("connecting to MongoDB", zap.Int("attempt", attempt))

		client, err := m.opts.Dial(ctx)
		if err == nil {
			observability.DatabaseConnectAttempts.WithLabelValues("success").Inc()
			m.client.Store(client)
			m.setState(StateConnected)
			m.log.Info("connected to MongoDB", zap.String("database", m.opts.DatabaseName))
			m.runHooks(ctx, client)
			return
		}

		observability.DatabaseConnectAttempts.WithLabelValues("failure").Inc()
		m.setState(StateDisconnected)
		if ctx.Err() != nil {
			return
		}

		m.log.Error("MongoDB connection failed",
			zap.String("class", string(Classify(err))),
			zap.Duration("retry_in", m.opts.RetryDelay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-m.opts.After(m.opts.RetryDelay):
		}
	}
}

func (m *Manager) runHooks(ctx context.Context, client *mongo.Client) {
	m.mu.Lock()
	hooks := slices.Clone(m.onConnect)
	m.mu.Unlock()

	db := client.Database(m.opts.DatabaseName)
	for _, h := range hooks {
		if err := h(ctx, db); err != nil {
			m.log.Warn("connect hook failed", zap.Error(err))
		}
	}
}

// Close stops the connect loop and disconnects the client if one exists.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	m.setState(StateClosed)

	client := m.client.Swap(nil)
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	m.log.Info("MongoDB connection closed")
	return nil
}

func (m *Manager) setState(s State) {
	prev := State(m.state.Swap(int32(s)))
	if prev == s {
		return
	}

	if s == StateConnected {
		observability.DatabaseUp.Set(1)
	} else {
		observability.DatabaseUp.Set(0)
	}

	m.mu.Lock()
	observers := slices.Clone(m.observers)
	m.mu.Unlock()
	for _, fn := range observers {
		fn(s)
	}
}

// topologyChanged tracks the driver's view of the deployment once a client
// is established. The service is ready while some server accepts writes; an
// unreachable secondary does not count. The driver reconnects on its own.
func (m *Manager) topologyChanged(td event.TopologyDescription) {
	if m.client.Load() == nil {
		return
	}

	switch up := writable(td); {
	case up && m.State() == StateDisconnected:
		m.setState(StateConnected)
		m.log.Info("MongoDB reconnected")
	case !up && m.State() == StateConnected:
		m.setState(StateDisconnected)
		m.log.Warn("MongoDB disconnected", zap.String("topology", td.Kind))
	}
}

func writable(td event.TopologyDescription) bool {
	for _, s := range td.Servers {
		switch s.Kind {
		case "Standalone", "RSPrimary", "Mongos", "LoadBalancer":
			return true
		}
	}
	return false
}

func (m *Manager) dialMongo(ctx context.Context) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(m.opts.URI).
		SetServerSelectionTimeout(DefaultServerSelectionTimeout).
		SetMaxConnIdleTime(DefaultMaxConnIdleTime).
		SetServerMonitor(&event.ServerMonitor{
			TopologyDescriptionChanged: func(e *event.TopologyDescriptionChangedEvent) {
				m.topologyChanged(e.NewDescription)
			},
		})
	if m.opts.AppName != "" {
		opts.SetAppName(m.opts.AppName)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultServerSelectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
