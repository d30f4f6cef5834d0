// Package shell is the interactive terminal storefront. It owns no state of
// its own: the cart, checkout and session live in the stores handed to New.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/atinyakov/GreenCart/internal/client/api"
	"github.com/atinyakov/GreenCart/internal/client/auth"
	"github.com/atinyakov/GreenCart/internal/client/cart"
	"github.com/atinyakov/GreenCart/internal/models"
	"go.uber.org/zap"
)

const helpText = `Available commands:
  states                      list every state
  state <name|abbr>           find a state and list its dispensaries
  menu <dispensary-id>        show a dispensary menu
  add <product-id> [qty]      add a product to the cart
  remove <product-id>         remove a line from the cart
  qty <product-id> <n>        set a line quantity (0 removes it)
  cart                        show the cart
  checkout                    open the order confirmation
  done | dismiss              close the confirmation (both empty the cart)
  signup <login> [name]       create an account
  login <login>               sign in
  logout                      sign out
  whoami                      show the signed-in user
  recommend <preferences>     ask for strain recommendations
  help                        show this help
  exit                        quit`

// Storefront is the part of the API client the shell calls directly.
type Storefront interface {
	States(ctx context.Context) ([]models.State, error)
	SearchState(ctx context.Context, query string) (models.State, string, error)
	Dispensaries(ctx context.Context, state string) ([]models.Dispensary, error)
	Menu(ctx context.Context, dispensaryID string) ([]models.Product, error)
	Product(ctx context.Context, id string) (models.Product, error)
	SignUp(ctx context.Context, login, password, displayName string) error
	Recommend(ctx context.Context, preferences string) ([]models.Recommendation, error)
}

// Sessions signs the user in and out. The resulting session reaches the shell
// through the auth store, not through these return values.
type Sessions interface {
	SignIn(ctx context.Context, login, password string) (*models.AuthSession, error)
	SignOut(ctx context.Context) error
}

// Deps are the collaborators the composition root hands to New.
type Deps struct {
	API      Storefront
	Sessions Sessions
	Cart     *cart.Store
	Checkout *cart.Checkout
	Auth     *auth.Store
	Log      *zap.Logger
	In       io.Reader
	Out      io.Writer
}

// Shell reads commands from In and writes results to Out.
type Shell struct {
	api      Storefront
	sessions Sessions
	cart     *cart.Store
	checkout *cart.Checkout
	auth     *auth.Store
	log      *zap.Logger

	scanner *bufio.Scanner
	outMu   sync.Mutex
	out     io.Writer

	badge int
}

// New wires a shell. It subscribes to the cart and auth stores; Run releases
// those subscriptions when it returns.
func New(d Deps) *Shell {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		api:      d.API,
		sessions: d.Sessions,
		cart:     d.Cart,
		checkout: d.Checkout,
		auth:     d.Auth,
		log:      log,
		scanner:  bufio.NewScanner(d.In),
		out:      d.Out,
	}
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, args...)
}

// Run processes commands until exit, end of input or ctx cancellation.
// In-flight API calls are canceled when Run returns.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubCart := s.cart.Subscribe(s.onCartChange)
	defer unsubCart()
	unsubAuth := s.auth.Subscribe(s.onSessionChange)
	defer unsubAuth()

	s.badge = s.cart.TotalItemCount()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.printf("%s> ", s.prompt())
		if !s.scanner.Scan() {
			s.println()
			return s.scanner.Err()
		}
		args := strings.Fields(s.scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			s.println("Bye")
			return nil
		}
		if err := s.dispatch(ctx, args); err != nil {
			s.println(userMessage(err))
			s.log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		}
	}
}

func (s *Shell) prompt() string {
	if s.checkout.State() == cart.Confirming {
		return "confirm (done|dismiss)"
	}
	return fmt.Sprintf("greencart [cart: %d]", s.badge)
}

func (s *Shell) onCartChange(snap cart.Snapshot) {
	s.badge = snap.ItemCount
}

func (s *Shell) onSessionChange(st auth.State) {
	if st.Session == nil {
		s.println("Signed out.")
		return
	}
	s.printf("Signed in as %s.\n", displayName(st.Session))
}

var errUsage = errors.New("usage")

type usageError string

func (u usageError) Error() string { return "Usage: " + string(u) }
func (u usageError) Unwrap() error { return errUsage }

func (s *Shell) dispatch(ctx context.Context, args []string) error {
	if s.checkout.State() == cart.Confirming {
		switch args[0] {
		case "done", "dismiss", "help", "cart", "whoami":
		default:
			return fmt.Errorf("%w: finish the open order first", cart.ErrInvalidTransition)
		}
	}

	rest := strings.Join(args[1:], " ")
	switch args[0] {
	case "help":
		s.println(helpText)
		return nil
	case "states":
		return s.listStates(ctx)
	case "state":
		if rest == "" {
			return usageError("state <name|abbr>")
		}
		return s.findState(ctx, rest)
	case "menu":
		if len(args) != 2 {
			return usageError("menu <dispensary-id>")
		}
		return s.showMenu(ctx, args[1])
	case "add":
		return s.add(ctx, args[1:])
	case "remove":
		if len(args) != 2 {
			return usageError("remove <product-id>")
		}
		s.cart.Remove(args[1])
		s.showCart()
		return nil
	case "qty":
		if len(args) != 3 {
			return usageError("qty <product-id> <n>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return usageError("qty <product-id> <n>")
		}
		s.cart.UpdateQuantity(args[1], n)
		s.showCart()
		return nil
	case "cart":
		s.showCart()
		return nil
	case "checkout":
		return s.beginCheckout()
	case "done":
		receipt, err := s.checkout.Done()
		if err != nil {
			return err
		}
		s.printf("Order placed: %d item(s), %s. Your cart is now empty.\n",
			receipt.ItemCount, formatCents(receipt.TotalCents))
		return nil
	case "dismiss":
		if err := s.checkout.Dismiss(); err != nil {
			return err
		}
		s.println("Confirmation closed. Your cart is now empty.")
		return nil
	case "signup":
		if len(args) < 2 {
			return usageError("signup <login> [display name]")
		}
		return s.signUp(ctx, args[1], strings.Join(args[2:], " "))
	case "login":
		if len(args) != 2 {
			return usageError("login <login>")
		}
		return s.signIn(ctx, args[1])
	case "logout":
		return s.signOut(ctx)
	case "whoami":
		s.whoami()
		return nil
	case "recommend":
		if rest == "" {
			return usageError("recommend <preferences>")
		}
		return s.recommend(ctx, rest)
	default:
		s.println("Unknown command. Type 'help' for a list of commands.")
		return nil
	}
}

func (s *Shell) listStates(ctx context.Context) error {
	states, err := s.api.States(ctx)
	if err != nil {
		return err
	}
	for _, st := range states {
		s.printf("%-16s %s\n", st.Name, st.Abbreviation)
	}
	return nil
}

func (s *Shell) findState(ctx context.Context, query string) error {
	st, route, err := s.api.SearchState(ctx, query)
	if errors.Is(err, api.ErrNotFound) {
		s.printf("State %q not found. Try a full name or a two-letter abbreviation.\n", query)
		return nil
	}
	if err != nil {
		return err
	}
	ds, err := s.api.Dispensaries(ctx, st.Name)
	if err != nil {
		return err
	}
	s.printf("%s (%s) %s\n", st.Name, st.Abbreviation, route)
	for _, d := range ds {
		s.printf("  %-40s %s  %2d min  %s\n", d.ID, d.Rating, d.DeliveryTime, d.Name)
	}
	return nil
}

func (s *Shell) showMenu(ctx context.Context, dispensaryID string) error {
	products, err := s.api.Menu(ctx, dispensaryID)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		s.println("This dispensary has no products listed yet.")
		return nil
	}
	for _, p := range products {
		s.printf("  %-36s %-28s %-10s %8s\n", p.ID, p.Name, p.Category, formatCents(p.PriceCents))
	}
	return nil
}

func (s *Shell) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("add <product-id> [qty]")
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usageError("add <product-id> [qty]")
		}
		qty = n
	}
	p, err := s.api.Product(ctx, args[0])
	if err != nil {
		return err
	}
	if err := s.cart.Add(p, qty); err != nil {
		return err
	}
	s.printf("Added %d x %s.\n", qty, p.Name)
	return nil
}

func (s *Shell) showCart() {
	snap := s.snapshot()
	if len(snap.Lines) == 0 {
		s.println("Your cart is empty.")
		return
	}
	for _, l := range snap.Lines {
		s.printf("  %-36s %-28s %3d x %8s\n", l.ProductID, l.Name, l.Quantity, formatCents(l.UnitPriceCents))
	}
	s.printf("  %d item(s), total %s\n", snap.ItemCount, formatCents(snap.TotalCents))
}

func (s *Shell) snapshot() cart.Snapshot {
	return cart.Snapshot{
		Lines:      s.cart.Lines(),
		ItemCount:  s.cart.TotalItemCount(),
		TotalCents: s.cart.TotalPrice(),
	}
}

func (s *Shell) beginCheckout() error {
	snap, err := s.checkout.Begin()
	if err != nil {
		return err
	}
	s.println("Confirm your order:")
	for _, l := range snap.Lines {
		s.printf("  %3d x %-28s %8s\n", l.Quantity, l.Name, formatCents(l.UnitPriceCents*int64(l.Quantity)))
	}
	s.printf("  Total %s. Type 'done' to place it or 'dismiss' to cancel.\n", formatCents(snap.TotalCents))
	return nil
}

// readSecret reads the next input line as a password.
func (s *Shell) readSecret(label string) (string, bool) {
	s.printf("%s: ", label)
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}

func (s *Shell) signUp(ctx context.Context, login, name string) error {
	pw, ok := s.readSecret("password")
	if !ok {
		return io.ErrUnexpectedEOF
	}
	if err := s.api.SignUp(ctx, login, pw, name); err != nil {
		return err
	}
	s.println("Account created. Use 'login' to sign in.")
	return nil
}

func (s *Shell) signIn(ctx context.Context, login string) error {
	pw, ok := s.readSecret("password")
	if !ok {
		return io.ErrUnexpectedEOF
	}
	_, err := s.sessions.SignIn(ctx, login, pw)
	return err
}

func (s *Shell) signOut(ctx context.Context) error {
	if sess, _ := s.auth.Current(); sess == nil {
		s.println("You are not signed in.")
		return nil
	}
	return s.sessions.SignOut(ctx)
}

func (s *Shell) whoami() {
	sess, resolved := s.auth.Current()
	switch {
	case !resolved:
		s.println("Checking session...")
	case sess == nil:
		s.println("Not signed in.")
	default:
		s.printf("%s (%s), session valid until %s\n",
			displayName(sess), sess.UserID, sess.ExpiresAt.Format("2006-01-02 15:04"))
	}
}

func (s *Shell) recommend(ctx context.Context, prefs string) error {
	s.println("Asking for recommendations...")
	recs, err := s.api.Recommend(ctx, prefs)
	if err != nil {
		return err
	}
	for i, r := range recs {
		s.printf("%d. %s: %s\n", i+1, r.Strain, r.Reason)
	}
	return nil
}

func displayName(sess *models.AuthSession) string {
	if sess.DisplayName != "" {
		return sess.DisplayName
	}
	return sess.UserID
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}

// userMessage turns an error into the line shown to the user.
func userMessage(err error) string {
	var status *api.StatusError
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, api.ErrNotFound):
		return "Not found."
	case errors.Is(err, api.ErrUnauthorized):
		return "Invalid login or password."
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "Quantity must be at least 1."
	case errors.Is(err, cart.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, cart.ErrInvalidTransition):
		return "That is not possible right now: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "Canceled."
	case errors.As(err, &status):
		return fmt.Sprintf("The server could not complete the request (%d).", status.Code)
	default:
		return "Something went wrong: " + err.Error()
	}
}
