// ABOUTME: Scripted CLI for sweet shop inventory and account management.
// ABOUTME: One-shot subcommands over the HTTP API with bearer authentication.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/2389/sweetshop/internal/api"
	"github.com/2389/sweetshop/internal/config"
	"github.com/2389/sweetshop/internal/session"
)

const banner = `
                             _       _
 _____      _____  ___| |_ ___| |__   ___  _ __
/ __\ \ /\ / / _ \/ _ \ __/ __| '_ \ / _ \| '_ \
\__ \\ V  V /  __/  __/ |_\__ \ | | | (_) | |_) |
|___/ \_/\_/ \___|\___|\__|___/_| |_|\___/| .__/
                                          |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	sess := session.New(cfg.Auth.TokenPath)
	if err := sess.LoadFromDisk(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if os.Getenv("SWEETSHOP_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	client := api.New(cfg.Server.BaseURL, sess, logger)
	client.SetTimeout(cfg.Server.RequestTimeout)

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "register":
		err = cmdRegister(ctx, client, args)
	case "login":
		err = cmdLogin(ctx, client, sess, args)
	case "logout":
		err = sess.Clear()
	case "whoami":
		err = cmdWhoami(sess)
	case "list":
		err = cmdList(ctx, client)
	case "search":
		err = cmdSearch(ctx, client, args)
	case "add":
		err = cmdAdd(ctx, client, args)
	case "update":
		err = cmdUpdate(ctx, client, args)
	case "delete":
		err = cmdDelete(ctx, client, args)
	case "restock":
		err = cmdRestock(ctx, client, cfg, args)
	case "purchase":
		err = cmdPurchase(ctx, client, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			color.Red("Error: %s", apiErr.Detail)
		} else {
			color.Red("Error: %v", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: sweet-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  register <user> <pass>             Create an account")
	fmt.Println("  login <user> <pass>                Log in; the session is shared with sweet-tui")
	fmt.Println("  logout                             Clear the persisted session")
	fmt.Println("  whoami                             Show the current identity")
	fmt.Println("  list                               Show the full inventory")
	fmt.Println("  search [name=N] [category=C] [min=P] [max=P]")
	fmt.Println("  add <name> <category> <price> <qty>")
	fmt.Println("  update <id> <name> <category> <price> <qty>")
	fmt.Println("  delete <id>")
	fmt.Println("  restock <id> [amount]")
	fmt.Println("  purchase <id>")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SWEETSHOP_SERVER      Service URL (default http://localhost:8000)")
	fmt.Println("  SWEETSHOP_CONFIG      Config file path")
	fmt.Println("  SWEETSHOP_DEBUG       Enable request logging")
}

func cmdRegister(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: register <user> <pass>")
	}

	user, err := client.Register(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	color.Green("Registered %s", user.Username)
	return nil
}

func cmdLogin(ctx context.Context, client *api.Client, sess *session.Store, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <user> <pass>")
	}

	token, err := client.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := sess.SetToken(token); err != nil {
		return err
	}

	color.Green("Logged in as %s (%s)", args[0], sess.Role())
	return nil
}

func cmdWhoami(sess *session.Store) error {
	claims, ok := sess.Claims()
	if !ok {
		fmt.Println("anonymous")
		return nil
	}

	fmt.Printf("%s (%s)\n", claims.Subject, sess.Role())
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf("token expires %s\n", claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdList(ctx context.Context, client *api.Client) error {
	sweets, err := client.List(ctx)
	if err != nil {
		return err
	}
	printSweets(sweets)
	return nil
}

func cmdSearch(ctx context.Context, client *api.Client, args []string) error {
	var filters api.Filters
	for _, pair := range args {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", pair)
		}
		switch key {
		case "name":
			filters.Name = &value
		case "category":
			filters.Category = &value
		case "min":
			price, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("min must be a number, got %q", value)
			}
			filters.MinPrice = &price
		case "max":
			price, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("max must be a number, got %q", value)
			}
			filters.MaxPrice = &price
		default:
			return fmt.Errorf("unknown filter %q (name, category, min, max)", key)
		}
	}

	sweets, err := client.Search(ctx, filters)
	if err != nil {
		return err
	}
	printSweets(sweets)
	return nil
}

func parseDraft(args []string) (api.Draft, error) {
	price, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return api.Draft{}, fmt.Errorf("price must be a number, got %q", args[2])
	}
	quantity, err := strconv.Atoi(args[3])
	if err != nil {
		return api.Draft{}, fmt.Errorf("quantity must be a whole number, got %q", args[3])
	}
	return api.Draft{Name: args[0], Category: args[1], Price: price, Quantity: quantity}, nil
}

func cmdAdd(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: add <name> <category> <price> <qty>")
	}

	draft, err := parseDraft(args)
	if err != nil {
		return err
	}

	sweet, err := client.Create(ctx, draft)
	if err != nil {
		return err
	}
	color.Green("Added %s (id %d)", sweet.Name, sweet.ID)
	return nil
}

func cmdUpdate(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("usage: update <id> <name> <category> <price> <qty>")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a number, got %q", args[0])
	}
	draft, err := parseDraft(args[1:])
	if err != nil {
		return err
	}

	sweet, err := client.Update(ctx, id, draft)
	if err != nil {
		return err
	}
	color.Green("Updated %s (id %d)", sweet.Name, sweet.ID)
	return nil
}

func cmdDelete(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a number, got %q", args[0])
	}

	if err := client.Delete(ctx, id); err != nil {
		return err
	}
	color.Green("Deleted sweet %d", id)
	return nil
}

func cmdRestock(ctx context.Context, client *api.Client, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: restock <id> [amount]")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a number, got %q", args[0])
	}

	amount := cfg.Inventory.RestockAmount
	if len(args) == 2 {
		amount, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("amount must be a whole number, got %q", args[1])
		}
	}

	sweet, err := client.Restock(ctx, id, amount)
	if err != nil {
		return err
	}
	color.Green("Restocked %s, now %d in stock", sweet.Name, sweet.Quantity)
	return nil
}

func cmdPurchase(ctx context.Context, client *api.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: purchase <id>")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id must be a number, got %q", args[0])
	}

	sweet, err := client.Purchase(ctx, id)
	if err != nil {
		return err
	}
	color.Green("Purchased %s, %d left", sweet.Name, sweet.Quantity)
	return nil
}

func printSweets(sweets []api.Sweet) {
	if len(sweets) == 0 {
		fmt.Println("No sweets available")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, s := range sweets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%d\n", s.ID, s.Name, s.Category, s.Price, s.Quantity)
	}
	w.Flush()
}
