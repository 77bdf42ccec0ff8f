// Command billctl is the terminal client: account management,
// subscription CRUD, and spending reports against a running server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"smartbills/internal/client"
	"smartbills/internal/session"
	"smartbills/internal/settings"
)

const appName = "billctl"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	serverURL := os.Getenv("SMARTBILLS_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	gate, err := session.NewGate(session.NewFileTokenStore(session.DefaultTokenPath(appName)))
	if err != nil {
		fatal("load session: %v", err)
	}
	c := client.New(serverURL, gate)
	settingsStore := settings.NewStore(settings.DefaultPath(appName))
	ctx := context.Background()

	var runErr error
	switch os.Args[1] {
	case "register":
		runErr = runRegister(ctx, c, os.Args[2:])
	case "login":
		runErr = runLogin(ctx, c, os.Args[2:])
	case "logout":
		runErr = c.Logout(ctx)
	case "list":
		runErr = runList(ctx, c)
	case "add":
		runErr = runAdd(ctx, c, os.Args[2:])
	case "remove":
		runErr = runRemove(ctx, c, os.Args[2:])
	case "summary":
		runErr = runSummary(ctx, c)
	case "budget":
		runErr = runBudget(ctx, c, settingsStore, os.Args[2:])
	case "export":
		runErr = runExport(ctx, c, os.Args[2:])
	case "config":
		runErr = runConfig(settingsStore, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		if errors.Is(runErr, client.ErrUnauthenticated) {
			fatal("not logged in, run: %s login -email you@example.com", appName)
		}
		fatal("%v", runErr)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [flags]

Commands:
  register   create an account and log in
  login      log in with an existing account
  logout     end the session
  list       list subscriptions
  add        add a subscription
  remove     remove a subscription by id
  summary    monthly totals and upcoming payments
  budget     check spending against a ceiling
  export     write csv or report to stdout
  config     show or change local settings

Environment:
  SMARTBILLS_URL  server address (default http://localhost:8080)
`, appName)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", appName, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func credentialFlags(name string, args []string) (email, password string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password (prompted via env SMARTBILLS_PASSWORD if empty)")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if password == "" {
		password = os.Getenv("SMARTBILLS_PASSWORD")
	}
	if email == "" || password == "" {
		return "", "", errors.New("both -email and -password (or SMARTBILLS_PASSWORD) are required")
	}
	return email, password, nil
}

func runRegister(ctx context.Context, c *client.Client, args []string) error {
	email, password, err := credentialFlags("register", args)
	if err != nil {
		return err
	}
	if err := c.Register(ctx, email, password); err != nil {
		return err
	}
	fmt.Println("registered and logged in")
	return nil
}

func runLogin(ctx context.Context, c *client.Client, args []string) error {
	email, password, err := credentialFlags("login", args)
	if err != nil {
		return err
	}
	if err := c.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Println("logged in")
	return nil
}

func runList(ctx context.Context, c *client.Client) error {
	subs, err := c.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("no subscriptions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSCHEDULE\tDUE\tCATEGORY")
	for _, s := range subs {
		fmt.Fprintf(w, "%d\t%s\t%.2f %s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Price, s.Currency, s.Schedule, s.DueDate, s.Category)
	}
	return w.Flush()
}

func runAdd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var sub client.Subscription
	fs.StringVar(&sub.Name, "name", "", "subscription name")
	fs.Float64Var(&sub.Price, "price", 0, "price per billing period")
	fs.StringVar(&sub.Currency, "currency", "", "currency code (default from server)")
	fs.StringVar(&sub.DueDate, "due", "", "next due date, YYYY-MM-DD")
	fs.StringVar(&sub.Category, "category", "other", "category")
	fs.StringVar(&sub.Schedule, "schedule", "monthly", "monthly, yearly, quarterly, weekly or one-time")
	fs.StringVar(&sub.Notes, "notes", "", "free-form notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	saved, err := c.Create(ctx, sub)
	if err != nil {
		return err
	}
	fmt.Printf("added %q with id %d\n", saved.Name, saved.ID)
	return nil
}

func runRemove(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.Int64("id", 0, "subscription id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}
	if err := c.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("removed subscription %d\n", *id)
	return nil
}

func runSummary(ctx context.Context, c *client.Client) error {
	summary, err := c.GetSummary(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Monthly total: %.2f\n", summary.TotalMonthly)
	if len(summary.PerCategory) > 0 {
		fmt.Println("By category (raw prices):")
		for cat, total := range summary.PerCategory {
			fmt.Printf("  %-16s %.2f\n", cat, total)
		}
	}
	if len(summary.Upcoming) > 0 {
		fmt.Println("Due in the next 30 days:")
		for _, s := range summary.Upcoming {
			fmt.Printf("  %s  %s (%.2f %s)\n", s.DueDate, s.Name, s.Price, s.Currency)
		}
	}
	return nil
}

func runBudget(ctx context.Context, c *client.Client, store *settings.Store, args []string) error {
	fs := flag.NewFlagSet("budget", flag.ContinueOnError)
	ceiling := fs.Float64("ceiling", 0, "monthly ceiling (default from local settings)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *ceiling == 0 {
		local, err := store.Load()
		if err != nil {
			return err
		}
		*ceiling = local.MonthlyBudget
	}

	budget, err := c.GetBudget(ctx, *ceiling)
	if err != nil {
		return err
	}

	fmt.Printf("Monthly total: %.2f of %.2f (%s)\n", budget.TotalMonthly, budget.Ceiling, budget.Status)
	if budget.UsagePercent != nil {
		fmt.Printf("Usage: %.1f%%, remaining %.2f\n", *budget.UsagePercent, budget.Remaining)
	} else {
		fmt.Println("Usage: unbounded (no ceiling set)")
	}
	return nil
}

func runExport(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "csv", "csv or report")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch *format {
	case "csv":
		return c.ExportCSV(ctx, os.Stdout)
	case "report":
		return c.ExportReport(ctx, os.Stdout)
	default:
		return fmt.Errorf("unknown export format %q", *format)
	}
}

func runConfig(store *settings.Store, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	budget := fs.Float64("budget", -1, "monthly budget ceiling")
	currency := fs.String("currency", "", "display currency")
	theme := fs.String("theme", "", "light or dark")
	if err := fs.Parse(args); err != nil {
		return err
	}

	local, err := store.Load()
	if err != nil {
		return err
	}

	changed := false
	if *budget >= 0 {
		local.MonthlyBudget = *budget
		changed = true
	}
	if *currency != "" {
		local.Currency = *currency
		changed = true
	}
	if *theme != "" {
		local.Theme = *theme
		changed = true
	}

	if changed {
		if err := store.Save(local); err != nil {
			return err
		}
	}

	fmt.Printf("currency: %s\ntheme: %s\nmonthly budget: %.2f\nbudget alerts: %v\nemail reminders: %v\n",
		local.Currency, local.Theme, local.MonthlyBudget, local.BudgetAlerts, local.EmailReminders)
	return nil
}
