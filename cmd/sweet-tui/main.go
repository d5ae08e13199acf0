// ABOUTME: Interactive terminal client for the sweet shop inventory service.
// ABOUTME: Provides readline-style input with role-gated commands and bearer auth.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/sweetshop/internal/api"
	"github.com/2389/sweetshop/internal/config"
	"github.com/2389/sweetshop/internal/inventory"
	"github.com/2389/sweetshop/internal/session"
)

// Version is set by goreleaser at build time.
var version = "dev"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	server := flag.String("server", "", "Service URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *server != "" {
		cfg.Server.BaseURL = *server
	}

	logger := setupLogger(cfg.Logging)

	sess := session.New(cfg.Auth.TokenPath)
	if err := sess.LoadFromDisk(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := api.New(cfg.Server.BaseURL, sess, logger)
	client.SetTimeout(cfg.Server.RequestTimeout)
	ctrl := inventory.New(client, logger)

	fmt.Printf("sweet-tui %s connected to %s\n", version, cfg.Server.BaseURL)
	printIdentity(sess)
	fmt.Println("Type /help for commands. Ctrl+C to quit.")
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &app{
		cfg:  cfg,
		sess: sess,
		api:  client,
		ctrl: ctrl,
	}

	if err := app.run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

// setupLogger builds the slog logger from the logging config.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// app bundles the wired components for the interactive loop.
type app struct {
	cfg  *config.Config
	sess *session.Store
	api  *api.Client
	ctrl *inventory.Controller

	scanner *bufio.Scanner
}

func (a *app) run(ctx context.Context) error {
	a.scanner = bufio.NewScanner(os.Stdin)

	// Initial mount: populate the inventory before the first prompt.
	a.ctrl.Load(ctx)
	a.render()

	for {
		fmt.Printf("[%s]> ", a.sess.Role())

		input, err := a.readLine(ctx)
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		a.dispatch(ctx, input)
	}
}

// readLine reads one line of input, honoring context cancellation.
func (a *app) readLine(ctx context.Context) (string, error) {
	inputCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		if a.scanner.Scan() {
			inputCh <- a.scanner.Text()
		} else {
			if err := a.scanner.Err(); err != nil {
				errCh <- err
			} else {
				errCh <- io.EOF
			}
		}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case input := <-inputCh:
		return input, nil
	}
}

// dispatch routes one command line. Role gating happens here: admin commands
// are only offered to admins and purchase only to customers, but this is
// advisory only; the service re-checks authorization on every request.
func (a *app) dispatch(ctx context.Context, input string) {
	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)
	isAdmin := a.sess.Role() == session.RoleAdmin

	switch cmd {
	case "/help":
		a.printHelp()

	case "/register":
		a.cmdRegister(ctx)

	case "/login":
		a.cmdLogin(ctx)

	case "/logout":
		a.cmdLogout()

	case "/whoami":
		printIdentity(a.sess)

	case "/list":
		a.ctrl.Load(ctx)
		a.afterOp()

	case "/search":
		a.cmdSearch(ctx, args)

	case "/reset":
		a.ctrl.ResetSearch(ctx)
		a.afterOp()

	case "/add":
		if !a.requireAdmin(isAdmin) {
			return
		}
		a.cmdAdd(ctx)

	case "/edit":
		if !a.requireAdmin(isAdmin) {
			return
		}
		a.cmdEdit(ctx, args)

	case "/cancel":
		a.ctrl.CancelEdit()
		fmt.Println("Edit cancelled")

	case "/delete":
		if !a.requireAdmin(isAdmin) {
			return
		}
		a.cmdDelete(ctx, args)

	case "/restock":
		if !a.requireAdmin(isAdmin) {
			return
		}
		a.cmdRestock(ctx, args)

	case "/buy", "/purchase":
		if isAdmin {
			color.Yellow("Purchasing is for customers; admins manage stock instead")
			return
		}
		a.cmdPurchase(ctx, args)

	default:
		fmt.Printf("Unknown command: %s (try /help)\n", cmd)
	}
}

func (a *app) requireAdmin(isAdmin bool) bool {
	if !isAdmin {
		color.Yellow("That command requires an admin session")
	}
	return isAdmin
}

func (a *app) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /list                      Show the full inventory")
	fmt.Println("  /search [name=N] [category=C] [min=P] [max=P]")
	fmt.Println("                             Filtered inventory view")
	fmt.Println("  /reset                     Clear filters and reload")
	fmt.Println("  /register                  Create an account")
	fmt.Println("  /login                     Log in and persist the session")
	fmt.Println("  /logout                    Clear the session")
	fmt.Println("  /whoami                    Show the current identity")

	if a.sess.Role() == session.RoleAdmin {
		fmt.Println("  /add                       Add a sweet (prompts for fields)")
		fmt.Println("  /edit <id>                 Edit a sweet (prompts for fields)")
		fmt.Println("  /cancel                    Abandon the current edit")
		fmt.Println("  /delete <id>               Remove a sweet")
		fmt.Printf("  /restock <id> [amount]     Raise stock (default %d)\n", a.cfg.Inventory.RestockAmount)
	} else {
		fmt.Println("  /buy <id>                  Purchase one unit")
	}

	fmt.Println("  /quit                      Exit")
}

// prompt reads one line with a label. The fallback is used for empty input.
func (a *app) prompt(label, fallback string) string {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", label, fallback)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !a.scanner.Scan() {
		return fallback
	}
	text := strings.TrimSpace(a.scanner.Text())
	if text == "" {
		return fallback
	}
	return text
}

func (a *app) cmdRegister(ctx context.Context) {
	username := a.prompt("Username", "")
	password := a.prompt("Password", "")

	user, err := a.api.Register(ctx, username, password)
	if err != nil {
		printAPIError(err, "Registration failed")
		return
	}
	color.Green("Registered %s. Log in with /login.", user.Username)
}

func (a *app) cmdLogin(ctx context.Context) {
	username := a.prompt("Username", "")
	password := a.prompt("Password", "")

	token, err := a.api.Login(ctx, username, password)
	if err != nil {
		printAPIError(err, "Login failed")
		return
	}

	// The gateway hands the token over; the session store owns it from here.
	if err := a.sess.SetToken(token); err != nil {
		color.Red("Error: %v", err)
		return
	}

	color.Green("Logged in as %s (%s)", username, a.sess.Role())
	a.ctrl.Load(ctx)
	a.render()
}

func (a *app) cmdLogout() {
	if err := a.sess.Clear(); err != nil {
		color.Red("Error: %v", err)
		return
	}
	fmt.Println("Logged out")
}

func (a *app) cmdSearch(ctx context.Context, args string) {
	var query inventory.Query
	for _, pair := range strings.Fields(args) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			color.Yellow("Expected key=value, got %q", pair)
			return
		}
		switch key {
		case "name":
			query.Name = value
		case "category":
			query.Category = value
		case "min":
			query.MinPrice = value
		case "max":
			query.MaxPrice = value
		default:
			color.Yellow("Unknown filter %q (name, category, min, max)", key)
			return
		}
	}

	a.ctrl.SetQuery(query)
	a.ctrl.Search(ctx)
	a.afterOp()
}

func (a *app) cmdAdd(ctx context.Context) {
	a.ctrl.CancelEdit()
	a.ctrl.SetForm(
		a.prompt("Name", ""),
		a.prompt("Category", ""),
		a.prompt("Price", ""),
		a.prompt("Quantity", ""),
	)
	a.ctrl.Submit(ctx)
	a.afterOp()
}

func (a *app) cmdEdit(ctx context.Context, args string) {
	id, ok := parseID(args)
	if !ok {
		return
	}

	sweet, ok := a.findSweet(id)
	if !ok {
		color.Yellow("No sweet with id %d in the current view (/list to refresh)", id)
		return
	}

	a.ctrl.BeginEdit(sweet)
	form := a.ctrl.Snapshot().Form
	a.ctrl.SetForm(
		a.prompt("Name", form.Name),
		a.prompt("Category", form.Category),
		a.prompt("Price", form.Price),
		a.prompt("Quantity", form.Quantity),
	)
	a.ctrl.Submit(ctx)
	a.afterOp()
}

func (a *app) cmdDelete(ctx context.Context, args string) {
	id, ok := parseID(args)
	if !ok {
		return
	}
	a.ctrl.Delete(ctx, id)
	a.afterOp()
}

func (a *app) cmdRestock(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		color.Yellow("Usage: /restock <id> [amount]")
		return
	}

	id, ok := parseID(fields[0])
	if !ok {
		return
	}

	amount := a.cfg.Inventory.RestockAmount
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			color.Yellow("Amount must be a whole number")
			return
		}
		amount = n
	}

	a.ctrl.Restock(ctx, id, amount)
	a.afterOp()
}

func (a *app) cmdPurchase(ctx context.Context, args string) {
	id, ok := parseID(args)
	if !ok {
		return
	}
	a.ctrl.Purchase(ctx, id)
	a.afterOp()
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		color.Yellow("Expected a numeric sweet id")
		return 0, false
	}
	return id, true
}

func (a *app) findSweet(id int64) (api.Sweet, bool) {
	for _, s := range a.ctrl.Snapshot().Items {
		if s.ID == id {
			return s, true
		}
	}
	return api.Sweet{}, false
}

// afterOp renders the new state and reacts to authorization failures by
// forcing a logout: an expired or rejected credential is useless, and a
// stale admin prompt would only mislead.
func (a *app) afterOp() {
	snap := a.ctrl.Snapshot()
	a.renderSnapshot(snap)

	if !snap.Unauthorized {
		return
	}
	if _, loggedIn := a.sess.Token(); !loggedIn {
		return
	}
	if err := a.sess.Clear(); err != nil {
		color.Red("Error: %v", err)
		return
	}
	color.Red("Session rejected by the server; you have been logged out")
}

func (a *app) render() {
	a.renderSnapshot(a.ctrl.Snapshot())
}

func (a *app) renderSnapshot(snap inventory.Snapshot) {
	if snap.Message != "" {
		color.Yellow("%s", snap.Message)
	}

	if len(snap.Items) == 0 {
		fmt.Println("No sweets available")
		fmt.Println()
		return
	}

	bold := color.New(color.Bold)
	bold.Printf("%4s  %-20s %-15s %10s %8s\n", "ID", "NAME", "CATEGORY", "PRICE", "STOCK")
	for _, s := range snap.Items {
		stock := strconv.Itoa(s.Quantity)
		if s.Quantity == 0 {
			stock = color.RedString("out")
		}
		fmt.Printf("%4d  %-20s %-15s %10.2f %8s\n", s.ID, s.Name, s.Category, s.Price, stock)
	}
	fmt.Println()
}

func printIdentity(sess *session.Store) {
	claims, ok := sess.Claims()
	if !ok {
		fmt.Println("Auth: anonymous (use /login)")
		return
	}

	fmt.Printf("Auth: %s (%s)", claims.Subject, sess.Role())
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf(", token expires %s", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Println()
}

func printAPIError(err error, fallback string) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		color.Red("%s: %s", fallback, apiErr.Detail)
		return
	}
	color.Red("%s: %v", fallback, err)
}
