package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"go.uber.org/zap"
)

// DefaultCurrency is used when CheckoutDeps.Currency is empty.
const DefaultCurrency = "egp"

const (
	msgIntentFailed  = "We could not start the card payment. Please try again."
	msgPaymentFailed = "Your card payment did not go through."
	msgOrderFailed   = "We could not place your order. Please try again."
)

// CheckoutDeps are the collaborators shared by all checkout sessions.
type CheckoutDeps struct {
	Cart                 CartProvider
	Rates                ShippingRateService
	Intents              PaymentIntentService
	Orders               OrderService
	Observers            []CheckoutObserver
	Currency             string
	FallbackShippingCost float64
	Logger               *zap.Logger
}

// Checkout is the state machine of one checkout session:
// shipping -> payment -> confirmation, with payment -> shipping allowed.
//
// Remote calls run without the session lock held. The submitting flag keeps a
// second submission out while one is in flight, and completed is set exactly
// once, so the order service is called at most once per successful session.
type Checkout struct {
	id     string
	userID string
	deps   CheckoutDeps

	mu             sync.Mutex
	step           models.Step
	form           models.ShippingForm
	method         models.PaymentMethod
	intentSecret   string
	intentID       string
	paymentRef     string
	completed      *models.OrderSummary
	submitting     bool
	creatingIntent bool
	notice         *models.Notice
	settings       *models.ShippingSettings
	ratesResolved  bool
	touchedAt      time.Time
}

// NewCheckout returns a session at the shipping step with cash on delivery selected.
func NewCheckout(id, userID string, deps CheckoutDeps) *Checkout {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Currency == "" {
		deps.Currency = DefaultCurrency
	}
	return &Checkout{
		id:        id,
		userID:    userID,
		deps:      deps,
		step:      models.StepShipping,
		method:    models.PaymentMethodCashOnDelivery,
		touchedAt: time.Now(),
	}
}

func (c *Checkout) ID() string     { return c.id }
func (c *Checkout) UserID() string { return c.userID }

// LastTouched is the time of the last operation on the session.
func (c *Checkout) LastTouched() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touchedAt
}

// PaymentIntentID returns the ID of the intent created for this session, if any.
func (c *Checkout) PaymentIntentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intentID
}

// State returns a snapshot of the session.
func (c *Checkout) State() models.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := models.CheckoutState{
		SessionID:           c.id,
		CurrentStep:         c.step,
		FormData:            c.form,
		PaymentMethod:       c.method,
		PaymentIntentSecret: c.intentSecret,
		PaymentReference:    c.paymentRef,
		CompletedOrder:      c.completedCopyLocked(),
		IsSubmitting:        c.submitting,
		CreatingIntent:      c.creatingIntent,
	}
	if c.notice != nil {
		n := *c.notice
		state.Notice = &n
	}
	return state
}

// Totals returns the live totals, or the submission snapshot once the order exists.
func (c *Checkout) Totals(ctx context.Context) (models.OrderTotals, error) {
	c.mu.Lock()
	if c.completed != nil {
		totals := c.completed.OrderTotals
		c.mu.Unlock()
		return totals, nil
	}
	c.mu.Unlock()

	settings, _ := c.currentSettings(ctx)
	cart, err := c.deps.Cart.GetCart(ctx, c.userID)
	if err != nil {
		return models.OrderTotals{}, fmt.Errorf("load cart: %w", err)
	}
	return c.computeTotals(cart, settings), nil
}

// ShouldRedirect reports whether the customer should leave checkout because the
// cart is empty. It never redirects from the confirmation step.
func (c *Checkout) ShouldRedirect(ctx context.Context) (bool, error) {
	c.mu.Lock()
	step := c.step
	c.mu.Unlock()

	if step == models.StepConfirmation {
		return false, nil
	}
	cart, err := c.deps.Cart.GetCart(ctx, c.userID)
	if err != nil {
		return false, fmt.Errorf("load cart: %w", err)
	}
	return cart.IsEmpty(), nil
}

// LoadShippingSettings resolves the shipping rate. Until a read succeeds totals
// use the fallback cost.
func (c *Checkout) LoadShippingSettings(ctx context.Context) error {
	settings, err := c.deps.Rates.GetShippingSettings(ctx)
	if err != nil {
		c.deps.Logger.Warn("Failed to load shipping settings, using fallback cost",
			zap.String("session_id", c.id),
			zap.Float64("fallback", c.deps.FallbackShippingCost),
			zap.Error(err),
		)
		return fmt.Errorf("load shipping settings: %w", err)
	}

	c.mu.Lock()
	c.settings = settings
	c.ratesResolved = true
	c.mu.Unlock()
	return nil
}

// currentSettings re-reads the shipping rate. When the read fails it returns the
// last rate that resolved; resolved is false if none ever did.
func (c *Checkout) currentSettings(ctx context.Context) (settings *models.ShippingSettings, resolved bool) {
	if err := c.LoadShippingSettings(ctx); err == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.settings, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings, c.ratesResolved
}

// UpdateShippingForm replaces the form while the session is at the shipping step.
func (c *Checkout) UpdateShippingForm(form models.ShippingForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if err := c.ensureEditableLocked(); err != nil {
		return err
	}
	if c.step != models.StepShipping {
		return ErrInvalidTransition
	}
	c.form = form
	if c.notice != nil && c.notice.Kind == models.NoticeValidation {
		c.notice = nil
	}
	return nil
}

// SubmitShipping validates the form and moves to the payment step. When card
// payment is selected a payment intent is created; a failure there leaves a
// retryable notice and does not fail the transition.
func (c *Checkout) SubmitShipping(ctx context.Context) error {
	needIntent, err := c.advanceToPayment()
	if err != nil {
		return err
	}
	if needIntent {
		c.ensurePaymentIntent(ctx)
	}
	return nil
}

func (c *Checkout) advanceToPayment() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if err := c.ensureEditableLocked(); err != nil {
		return false, err
	}
	if c.step != models.StepShipping {
		return false, ErrInvalidTransition
	}
	if err := ValidateShippingForm(c.form); err != nil {
		c.notice = &models.Notice{Kind: models.NoticeValidation, Message: err.Error()}
		return false, err
	}

	c.form = NormalizeShippingForm(c.form)
	c.notice = nil
	c.transitionLocked(models.StepPayment)
	return c.needsIntentLocked(), nil
}

// SetPaymentMethod selects the payment backend. Selecting card payment on the
// payment step creates a payment intent if none exists yet.
func (c *Checkout) SetPaymentMethod(ctx context.Context, method models.PaymentMethod) error {
	needIntent, err := c.selectMethod(method)
	if err != nil {
		return err
	}
	if needIntent {
		c.ensurePaymentIntent(ctx)
	}
	return nil
}

func (c *Checkout) selectMethod(method models.PaymentMethod) (bool, error) {
	if !method.Valid() {
		return false, ErrInvalidPaymentMethod
	}
	if method == models.PaymentMethodStripeCard && c.deps.Intents == nil {
		return false, ErrWrongPaymentMethod
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if err := c.ensureEditableLocked(); err != nil {
		return false, err
	}
	c.method = method
	if method == models.PaymentMethodCashOnDelivery && c.notice != nil && c.notice.Kind != models.NoticeValidation {
		c.notice = nil
	}
	return c.needsIntentLocked(), nil
}

// RetryPaymentIntent re-attempts payment intent creation after a failure.
func (c *Checkout) RetryPaymentIntent(ctx context.Context) error {
	return c.createPaymentIntent(ctx)
}

// BackToShipping returns from the payment step to the shipping step. An existing
// payment intent is kept for reuse.
func (c *Checkout) BackToShipping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if err := c.ensureEditableLocked(); err != nil {
		return err
	}
	if c.step != models.StepPayment {
		return ErrInvalidTransition
	}
	c.notice = nil
	c.transitionLocked(models.StepShipping)
	return nil
}

// ConfirmCashOnDelivery creates the order for a cash on delivery checkout.
// Once the order exists further calls return it without contacting the order service.
func (c *Checkout) ConfirmCashOnDelivery(ctx context.Context) (*models.OrderSummary, error) {
	sub, done, err := c.beginSubmission(models.PaymentMethodCashOnDelivery, "")
	if err != nil || done != nil {
		return done, err
	}
	return c.submitOrder(ctx, sub)
}

// HandlePaymentSuccess is the payment widget success callback. It may fire any
// number of times; only the first call that finds the session open creates the order.
func (c *Checkout) HandlePaymentSuccess(ctx context.Context, paymentRef string) (*models.OrderSummary, error) {
	sub, done, err := c.beginSubmission(models.PaymentMethodStripeCard, paymentRef)
	if err != nil || done != nil {
		return done, err
	}
	return c.submitOrder(ctx, sub)
}

// HandlePaymentError is the payment widget failure callback.
func (c *Checkout) HandlePaymentError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if c.completed != nil {
		return
	}
	if message == "" {
		message = msgPaymentFailed
	}
	c.notice = &models.Notice{Kind: models.NoticePayment, Message: message, Retryable: true}
	for _, o := range c.deps.Observers {
		o.PaymentFailed(c.id, message)
	}
}

// RetryOrder re-attempts order creation after a failure. Card checkouts reuse
// the stored payment reference, so no new charge is made.
func (c *Checkout) RetryOrder(ctx context.Context) (*models.OrderSummary, error) {
	c.mu.Lock()
	method := c.method
	c.mu.Unlock()

	if method == models.PaymentMethodCashOnDelivery {
		return c.ConfirmCashOnDelivery(ctx)
	}
	return c.HandlePaymentSuccess(ctx, "")
}

type submission struct {
	form   models.ShippingForm
	method models.PaymentMethod
	ref    string
}

// beginSubmission closes the in-flight gate. It returns the completed order
// instead when the latch is already closed.
func (c *Checkout) beginSubmission(method models.PaymentMethod, ref string) (*submission, *models.OrderSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if c.completed != nil || c.step == models.StepConfirmation {
		return nil, c.completedCopyLocked(), nil
	}
	if c.submitting {
		return nil, nil, ErrSubmissionInFlight
	}
	if c.method != method {
		return nil, nil, ErrWrongPaymentMethod
	}

	switch method {
	case models.PaymentMethodCashOnDelivery:
		if c.step != models.StepPayment {
			return nil, nil, ErrInvalidTransition
		}
	case models.PaymentMethodStripeCard:
		// The charge already happened, so a session that went back to the
		// shipping step still completes as long as the form is valid.
		if c.step != models.StepPayment {
			if err := ValidateShippingForm(c.form); err != nil {
				return nil, nil, ErrInvalidTransition
			}
		}
		switch {
		case c.paymentRef == "" && ref == "":
			return nil, nil, ErrMissingPaymentReference
		case c.paymentRef == "":
			c.paymentRef = ref
		case ref != "" && ref != c.paymentRef:
			c.deps.Logger.Warn("Ignoring second payment reference for checkout",
				zap.String("session_id", c.id),
				zap.String("payment_reference", c.paymentRef),
				zap.String("ignored_reference", ref),
			)
		}
	}

	c.submitting = true
	return &submission{
		form:   NormalizeShippingForm(c.form),
		method: method,
		ref:    c.paymentRef,
	}, nil, nil
}

func (c *Checkout) submitOrder(ctx context.Context, sub *submission) (*models.OrderSummary, error) {
	input := buildOrderInput(sub)

	cart, err := c.deps.Cart.GetCart(ctx, c.userID)
	if err != nil {
		return nil, c.failSubmission(ctx, sub, input, fmt.Errorf("load cart: %w", err))
	}
	if cart.IsEmpty() {
		return nil, c.failSubmission(ctx, sub, input, ErrEmptyCart)
	}

	// The fallback cost is never written into an order.
	settings, resolved := c.currentSettings(ctx)
	if !resolved {
		return nil, c.failSubmission(ctx, sub, input, ErrShippingRateUnavailable)
	}
	totals := c.computeTotals(cart, settings)
	if cart.Coupon != nil {
		discount := cart.Coupon.Discount
		input.CouponCode = cart.Coupon.Code
		input.CouponDiscount = &discount
	}

	result, err := c.deps.Orders.CreateOrder(ctx, c.userID, c.id, input)
	if err == nil && (result == nil || result.OrderID == "") {
		err = errors.New("order service returned no order id")
	}
	if err != nil {
		return nil, c.failSubmission(ctx, sub, input, err)
	}

	summary := c.completeSubmission(result, totals)
	c.afterOrderCreated(ctx, summary, input, cart.Coupon != nil)
	return &summary, nil
}

func (c *Checkout) completeSubmission(result *models.CreateOrderResult, totals models.OrderTotals) models.OrderSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.submitting = false
	c.completed = &models.OrderSummary{
		OrderID:     result.OrderID,
		OrderNumber: result.OrderNumber,
		OrderTotals: totals,
	}
	c.notice = nil
	c.transitionLocked(models.StepConfirmation)
	return *c.completed
}

func (c *Checkout) failSubmission(ctx context.Context, sub *submission, input models.CreateOrderInput, cause error) error {
	c.mu.Lock()
	c.submitting = false
	c.notice = &models.Notice{Kind: models.NoticeOrder, Message: msgOrderFailed, Retryable: true}
	c.mu.Unlock()

	if sub.ref != "" {
		c.deps.Logger.Error("Order creation failed after successful card payment",
			zap.String("session_id", c.id),
			zap.String("user_id", c.userID),
			zap.String("payment_reference", sub.ref),
			zap.Error(cause),
		)
	} else {
		c.deps.Logger.Warn("Order creation failed",
			zap.String("session_id", c.id),
			zap.String("user_id", c.userID),
			zap.Error(cause),
		)
	}

	for _, o := range c.deps.Observers {
		o.OrderFailed(ctx, c.id, c.userID, input, cause)
	}
	return fmt.Errorf("%w: %w", ErrOrderCreationFailed, cause)
}

func (c *Checkout) afterOrderCreated(ctx context.Context, summary models.OrderSummary, input models.CreateOrderInput, hadCoupon bool) {
	ctx = context.WithoutCancel(ctx)

	if hadCoupon {
		if err := c.deps.Cart.RemoveCoupon(ctx, c.userID); err != nil {
			c.deps.Logger.Warn("Failed to release coupon after order",
				zap.String("session_id", c.id),
				zap.String("coupon_code", input.CouponCode),
				zap.Error(err),
			)
		}
	}
	if err := c.deps.Cart.CompleteCheckout(ctx, c.userID); err != nil {
		c.deps.Logger.Warn("Failed to clear cart after order",
			zap.String("session_id", c.id),
			zap.Error(err),
		)
	}

	c.deps.Logger.Info("Order created",
		zap.String("session_id", c.id),
		zap.String("order_id", summary.OrderID),
		zap.String("order_number", summary.OrderNumber),
		zap.String("payment_method", input.PaymentMethod),
		zap.Float64("total", summary.Total),
	)
	for _, o := range c.deps.Observers {
		o.OrderCreated(ctx, c.id, c.userID, summary, input)
	}
}

// ensurePaymentIntent creates the intent and records failures in the notice.
func (c *Checkout) ensurePaymentIntent(ctx context.Context) {
	if err := c.createPaymentIntent(ctx); err != nil && !errors.Is(err, ErrIntentInFlight) {
		c.deps.Logger.Debug("Payment intent not created", zap.String("session_id", c.id), zap.Error(err))
	}
}

func (c *Checkout) createPaymentIntent(ctx context.Context) error {
	form, ok, err := c.beginIntent()
	if err != nil || !ok {
		return err
	}

	var resp *models.PaymentIntentResponse
	totals, err := c.Totals(ctx)
	if err == nil {
		amount := ToMinorUnits(totals.Total)
		if amount <= 0 {
			err = fmt.Errorf("total %.2f cannot be charged", totals.Total)
		} else {
			resp, err = c.deps.Intents.CreatePaymentIntent(ctx, models.PaymentIntentRequest{
				Amount:   amount,
				Currency: c.deps.Currency,
				Metadata: models.PaymentIntentMetadata{
					CustomerName:      form.FullName,
					CustomerEmail:     form.Email,
					CheckoutSessionID: c.id,
				},
			})
		}
	}
	if err == nil && (resp == nil || resp.ClientSecret == "") {
		err = errors.New("payment intent service returned no client secret")
	}
	return c.finishIntent(resp, err)
}

func (c *Checkout) beginIntent() (models.ShippingForm, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchedAt = time.Now()

	if err := c.ensureEditableLocked(); err != nil {
		return models.ShippingForm{}, false, err
	}
	if c.step != models.StepPayment {
		return models.ShippingForm{}, false, ErrInvalidTransition
	}
	if c.method != models.PaymentMethodStripeCard {
		return models.ShippingForm{}, false, ErrWrongPaymentMethod
	}
	if c.creatingIntent {
		return models.ShippingForm{}, false, ErrIntentInFlight
	}
	if c.intentSecret != "" {
		return models.ShippingForm{}, false, nil
	}
	c.creatingIntent = true
	return c.form, true, nil
}

func (c *Checkout) finishIntent(resp *models.PaymentIntentResponse, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creatingIntent = false

	if err != nil {
		if c.completed == nil {
			c.notice = &models.Notice{Kind: models.NoticePaymentIntent, Message: msgIntentFailed, Retryable: true}
		}
		c.deps.Logger.Warn("Failed to create payment intent", zap.String("session_id", c.id), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPaymentIntentFailed, err)
	}

	c.intentSecret = resp.ClientSecret
	c.intentID = resp.PaymentIntentID
	if c.intentID == "" {
		c.intentID = IntentIDFromSecret(resp.ClientSecret)
	}
	if c.notice != nil && c.notice.Kind == models.NoticePaymentIntent {
		c.notice = nil
	}
	for _, o := range c.deps.Observers {
		o.PaymentIntentCreated(c.id, c.intentID)
	}
	return nil
}

func (c *Checkout) needsIntentLocked() bool {
	return c.step == models.StepPayment &&
		c.method == models.PaymentMethodStripeCard &&
		c.intentSecret == "" &&
		!c.creatingIntent
}

func (c *Checkout) ensureEditableLocked() error {
	if c.completed != nil {
		return ErrCheckoutCompleted
	}
	if c.submitting {
		return ErrSubmissionInFlight
	}
	return nil
}

func (c *Checkout) transitionLocked(to models.Step) {
	from := c.step
	if from == to {
		return
	}
	c.step = to
	for _, o := range c.deps.Observers {
		o.StepChanged(c.id, from, to)
	}
}

func (c *Checkout) completedCopyLocked() *models.OrderSummary {
	if c.completed == nil {
		return nil
	}
	order := *c.completed
	return &order
}

func (c *Checkout) computeTotals(cart *models.Cart, settings *models.ShippingSettings) models.OrderTotals {
	var lines []models.CartLine
	if cart != nil {
		lines = cart.Items
	}
	return ComputeTotals(lines, settings, cart.CouponDiscount(), c.deps.FallbackShippingCost)
}

func buildOrderInput(sub *submission) models.CreateOrderInput {
	input := models.CreateOrderInput{
		FullName:      sub.form.FullName,
		Email:         sub.form.Email,
		Phone:         sub.form.Phone,
		Country:       sub.form.Country,
		City:          sub.form.City,
		District:      sub.form.District,
		Street:        sub.form.Street,
		PostalCode:    sub.form.PostalCode,
		Notes:         sub.form.Notes,
		PaymentMethod: sub.method.OrderPaymentMethod(),
	}
	if sub.method == models.PaymentMethodStripeCard {
		input.StripePaymentID = sub.ref
	}
	return input
}

// ToMinorUnits converts a currency amount to its smallest unit.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// IntentIDFromSecret extracts the payment intent ID from a Stripe client secret
// of the form "pi_..._secret_...".
func IntentIDFromSecret(secret string) string {
	if i := strings.Index(secret, "_secret_"); i > 0 {
		return secret[:i]
	}
	return ""
}
