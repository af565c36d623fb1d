package draft

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// StoreFactory returns the draft store of one user.
type StoreFactory func(userID string) Store

// Manager holds one Controller per user. A controller is hydrated from the
// user's store the first time it is requested.
type Manager struct {
	mu          sync.Mutex
	factory     StoreFactory
	log         logrus.FieldLogger
	opts        []Option
	controllers map[string]*Controller
}

// NewManager returns a Manager building controllers with opts.
func NewManager(factory StoreFactory, log logrus.FieldLogger, opts ...Option) *Manager {
	return &Manager{
		factory:     factory,
		log:         log,
		opts:        opts,
		controllers: make(map[string]*Controller),
	}
}

// For returns the controller of userID.
func (m *Manager) For(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[userID]; ok {
		return c
	}

	opts := append([]Option{}, m.opts...)
	opts = append(opts, WithOwner(userID), WithLogger(m.log.WithField("user", userID)))
	c := NewController(m.factory(userID), opts...)
	m.controllers[userID] = c
	return c
}

// Forget drops the in-memory controller of userID once its draft is back
// to the default after a submit or reset. The stored draft is kept and
// hydrates the next controller.
func (m *Manager) Forget(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controllers, userID)
}

// Len returns the number of live controllers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}
