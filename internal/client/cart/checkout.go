package cart

import (
	"errors"
	"fmt"
	"sync"
)

// CheckoutState is the state of the checkout confirmation dialog.
type CheckoutState int

const (
	// Idle means no confirmation is in progress.
	Idle CheckoutState = iota
	// Confirming means the confirmation dialog is open.
	Confirming
)

func (s CheckoutState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	default:
		return fmt.Sprintf("CheckoutState(%d)", int(s))
	}
}

var (
	// ErrInvalidTransition is returned for a transition the current state does not allow.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrEmptyCart is returned when checkout begins with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// Receipt summarizes the cart at the moment checkout was confirmed.
type Receipt struct {
	Snapshot
}

// Checkout drives Idle -> Confirming -> Idle. Leaving Confirming by any path
// clears the cart. No payment or order persistence happens here.
type Checkout struct {
	mu      sync.Mutex
	cart    *Store
	state   CheckoutState
	pending Snapshot
}

// NewCheckout returns an idle checkout bound to c.
func NewCheckout(c *Store) *Checkout {
	return &Checkout{cart: c}
}

// State reports the current state.
func (c *Checkout) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Begin opens the confirmation dialog and returns the cart summary it shows.
func (c *Checkout) Begin() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		return Snapshot{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, Confirming)
	}
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return Snapshot{}, ErrEmptyCart
	}
	c.pending = Snapshot{Lines: lines, ItemCount: itemCount(lines), TotalCents: totalCents(lines)}
	c.state = Confirming
	return c.pending, nil
}

// Done acknowledges the order, clears the cart and returns to Idle.
func (c *Checkout) Done() (Receipt, error) {
	snap, err := c.finish()
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Snapshot: snap}, nil
}

// Dismiss closes the dialog, clears the cart and returns to Idle.
func (c *Checkout) Dismiss() error {
	_, err := c.finish()
	return err
}

func (c *Checkout) finish() (Snapshot, error) {
	c.mu.Lock()
	if c.state != Confirming {
		st := c.state
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st, Idle)
	}
	snap := c.pending
	c.pending = Snapshot{}
	c.state = Idle
	c.mu.Unlock()

	c.cart.Clear()
	return snap, nil
}
