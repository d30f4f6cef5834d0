// Package main runs the GreenCart terminal storefront. The cart, checkout and
// session stores live for the lifetime of the process and are wired into the
// shell here.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/atinyakov/GreenCart/internal/client/api"
	"github.com/atinyakov/GreenCart/internal/client/auth"
	"github.com/atinyakov/GreenCart/internal/client/cart"
	"github.com/atinyakov/GreenCart/internal/client/shell"
	"github.com/atinyakov/GreenCart/internal/logger"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	var (
		baseURL  string
		token    string
		logLevel string
		poll     time.Duration
		showVer  bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "storefront API base URL")
	flag.StringVar(&token, "token", os.Getenv("GREENCART_TOKEN"), "session token to restore")
	flag.StringVar(&logLevel, "log-level", "error", "log level")
	flag.DurationVar(&poll, "poll", 30*time.Second, "session re-validation interval")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("GreenCart Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	if poll <= 0 {
		fmt.Fprintf(os.Stderr, "invalid -poll %s: must be positive\n", poll)
		os.Exit(2)
	}

	log := logger.New()
	if err := log.Init(logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	defer func() { _ = log.Log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The shell blocks reading stdin, so an interrupt exits the process directly.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		cancel()
		fmt.Println("\nBye")
		os.Exit(130)
	}()

	client := api.New(baseURL)

	provider := auth.NewHTTPProvider(client, token, log.Log)
	sessions := auth.NewStore(ctx, provider, log.Log)
	defer sessions.Close()
	provider.Watch(ctx, poll)

	items := cart.NewStore()
	sh := shell.New(shell.Deps{
		API:      client,
		Sessions: provider,
		Cart:     items,
		Checkout: cart.NewCheckout(items),
		Auth:     sessions,
		Log:      log.Log,
		In:       os.Stdin,
		Out:      os.Stdout,
	})

	fmt.Println("Welcome to GreenCart. Type 'help' for a list of commands.")
	if err := sh.Run(ctx); err != nil {
		log.Log.Error("shell stopped", zap.Error(err))
		os.Exit(1)
	}
}
