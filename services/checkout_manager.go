package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const shippingSettingsTimeout = 10 * time.Second

// CheckoutCartStore is the cart store as seen by the session registry.
type CheckoutCartStore interface {
	CartProvider
	BeginCheckout(ctx context.Context, userID string) error
}

// CheckoutManager keeps the live checkout sessions.
type CheckoutManager struct {
	deps   CheckoutDeps
	cart   CheckoutCartStore
	ttl    time.Duration
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Checkout

	// intentMu is never held while calling into a Checkout.
	intentMu sync.RWMutex
	intents  map[string]string
}

// NewCheckoutManager creates a registry. Sessions idle for longer than ttl are
// dropped by Sweep.
func NewCheckoutManager(deps CheckoutDeps, cart CheckoutCartStore, ttl time.Duration, logger *zap.Logger) *CheckoutManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &CheckoutManager{
		cart:     cart,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Checkout),
		intents:  make(map[string]string),
	}

	deps.Cart = cart
	if deps.Logger == nil {
		deps.Logger = logger
	}
	observers := make([]CheckoutObserver, 0, len(deps.Observers)+1)
	observers = append(observers, deps.Observers...)
	deps.Observers = append(observers, m)
	m.deps = deps
	return m
}

// Open starts a checkout for the user's current cart.
func (m *CheckoutManager) Open(ctx context.Context, userID string) (*Checkout, error) {
	cart, err := m.cart.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := m.cart.BeginCheckout(ctx, userID); err != nil {
		return nil, fmt.Errorf("mark cart for checkout: %w", err)
	}

	c := NewCheckout(uuid.NewString(), userID, m.deps)

	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.mu.Unlock()

	m.logger.Info("Checkout session opened",
		zap.String("session_id", c.ID()),
		zap.String("user_id", userID),
		zap.Int("items", len(cart.Items)),
	)

	go m.resolveShipping(c)
	return c, nil
}

func (m *CheckoutManager) resolveShipping(c *Checkout) {
	ctx, cancel := context.WithTimeout(context.Background(), shippingSettingsTimeout)
	defer cancel()
	_ = c.LoadShippingSettings(ctx)
}

// Get returns the session with the given ID if it belongs to userID.
func (m *CheckoutManager) Get(id, userID string) (*Checkout, error) {
	c, ok := m.Lookup(id)
	if !ok || c.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Lookup returns a session by ID without an owner check.
func (m *CheckoutManager) Lookup(id string) (*Checkout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	return c, ok
}

// FindByPaymentIntent returns the session that created the given payment intent.
func (m *CheckoutManager) FindByPaymentIntent(intentID string) (*Checkout, bool) {
	m.intentMu.RLock()
	sessionID, ok := m.intents[intentID]
	m.intentMu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.Lookup(sessionID)
}

// Len returns the number of live sessions.
func (m *CheckoutManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions not touched since now-ttl and returns how many were removed.
func (m *CheckoutManager) Sweep(now time.Time) int {
	m.mu.RLock()
	snapshot := make([]*Checkout, 0, len(m.sessions))
	for _, c := range m.sessions {
		snapshot = append(snapshot, c)
	}
	m.mu.RUnlock()

	var expired []*Checkout
	for _, c := range snapshot {
		if now.Sub(c.LastTouched()) > m.ttl {
			expired = append(expired, c)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	m.mu.Lock()
	for _, c := range expired {
		delete(m.sessions, c.ID())
	}
	m.mu.Unlock()

	m.intentMu.Lock()
	for _, c := range expired {
		if id := c.PaymentIntentID(); id != "" {
			delete(m.intents, id)
		}
	}
	m.intentMu.Unlock()

	m.logger.Info("Expired checkout sessions removed", zap.Int("count", len(expired)))
	return len(expired)
}

// Run sweeps expired sessions until ctx is cancelled.
func (m *CheckoutManager) Run(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

func (m *CheckoutManager) PaymentIntentCreated(sessionID, intentID string) {
	if intentID == "" {
		return
	}
	m.intentMu.Lock()
	m.intents[intentID] = sessionID
	m.intentMu.Unlock()
}

func (m *CheckoutManager) StepChanged(string, models.Step, models.Step) {}

func (m *CheckoutManager) PaymentFailed(string, string) {}

func (m *CheckoutManager) OrderCreated(context.Context, string, string, models.OrderSummary, models.CreateOrderInput) {
}

func (m *CheckoutManager) OrderFailed(context.Context, string, string, models.CreateOrderInput, error) {
}
