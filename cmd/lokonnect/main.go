package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"lokonnect/internal/api"
	"lokonnect/internal/booking"
	"lokonnect/internal/catalog"
	"lokonnect/internal/config"
	"lokonnect/internal/discount"
	"lokonnect/internal/logging"
	"lokonnect/internal/models"
	"lokonnect/internal/payment"
	"lokonnect/internal/session"
	"lokonnect/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       "info",
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to open local state:", err)
	}
	defer store.Close()

	sess := session.NewStore(store, logger)
	client := api.NewClient(api.Config{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          cfg.API.Timeout,
		TokenWaitTimeout: cfg.API.TokenWaitTimeout,
	}, sess, logger)

	if len(os.Args) < 2 {
		usage()
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "events":
		runEvents(ctx, os.Args[2:], client)
	case "login":
		runLogin(ctx, client, sess)
	case "book":
		runBook(ctx, os.Args[2:], cfg, client, sess, store, logger)
	case "logout":
		sess.Logout()
		fmt.Println("Logged out")
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Usage: lokonnect <events|login|book|logout> [flags]")
	os.Exit(1)
}

func runEvents(ctx context.Context, args []string, client *api.Client) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	search := fs.String("search", "", "free-text search over title and venue")
	category := fs.String("category", catalog.CategoryAll, "category filter")
	location := fs.String("location", "", "location filter")
	fs.Parse(args)

	cat := catalog.NewStore(client, nil)
	if err := cat.Load(ctx); err != nil {
		log.Fatal("Failed to load catalog:", err)
	}
	cat.SetSearch(*search)
	cat.SetCategory(*category)
	cat.SetLocation(*location)

	events := cat.Visible()
	fmt.Printf("%d events\n", len(events))
	for _, e := range events {
		fmt.Printf("  [%s] %s at %s, %s on %s %s (₹%.0f, %d left)\n",
			e.ID, e.Title, e.Venue, e.Location, e.Date, e.Time, e.Price, e.SpotsLeft())
	}
}

func runLogin(ctx context.Context, client *api.Client, sess *session.Store) {
	reader := bufio.NewReader(os.Stdin)
	flow := session.NewFlow(client, sess)

	fmt.Print("Phone number: ")
	phone, _ := reader.ReadString('\n')
	if err := flow.SubmitPhone(ctx, strings.TrimSpace(phone)); err != nil {
		log.Fatal("Failed to request OTP:", err)
	}

	fmt.Print("OTP: ")
	code, _ := reader.ReadString('\n')
	for _, d := range strings.TrimSpace(code) {
		flow.EnterDigit(d)
	}
	if err := flow.SubmitOTP(ctx); err != nil {
		log.Fatal("Login failed:", err)
	}

	user := sess.User()
	fmt.Printf("Logged in as %s\n", user.DisplayName())
}

func runBook(ctx context.Context, args []string, cfg *config.Config, client *api.Client, sess *session.Store, store *storage.Store, logger *zap.Logger) {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	serviceID := fs.String("service", "", "service/event id to book")
	tierID := fs.String("tier", "", "ticket tier id")
	qty := fs.Int("qty", 1, "number of tickets")
	date := fs.String("date", "", "booking date, day-month-year (e.g. 15-02-2025)")
	slot := fs.String("time", "", "time slot, 12-hour clock (e.g. 6:30 PM)")
	promo := fs.String("promo", "", "promo code to apply")
	fs.Parse(args)

	if *serviceID == "" || *tierID == "" || *date == "" || *slot == "" {
		fs.Usage()
		os.Exit(1)
	}

	detail, err := client.GetService(ctx, *serviceID)
	if err != nil {
		log.Fatal("Failed to fetch service:", err)
	}

	tier, err := detail.FindTier(*tierID)
	if err != nil {
		log.Fatalf("Cannot book tier %q: %v", *tierID, err)
	}

	line := models.NewTicketLine(tier, *qty)
	if line.Quantity == 0 {
		log.Fatalf("Cannot book tier %q: %v", tier.Name, models.ErrInsufficientStock)
	}
	lines := []models.TicketLine{line}

	resolver := discount.NewResolver(client, logger)
	var applied *models.AppliedDiscount
	if *promo != "" {
		applied, err = resolver.Validate(ctx, api.DiscountContext{
			ProviderID:    detail.ProviderID,
			CategoryID:    detail.CategoryID,
			BookingAmount: models.Subtotal(lines),
			ServiceIDs:    []string{detail.ID},
			DiscountCode:  strings.ToUpper(*promo),
		})
		if err != nil {
			log.Fatal("Promo code rejected:", err)
		}
		fmt.Printf("You saved ₹%.1f with %s\n", applied.Savings, applied.Code)
	}

	gateway := payment.NewCheckout(payment.Config{
		KeyID:        cfg.Razorpay.KeyID,
		AppName:      cfg.App.Name,
		LogoURL:      cfg.App.LogoURL,
		CallbackAddr: cfg.Razorpay.CallbackAdr,
	}, client, logger)

	orch := booking.NewOrchestrator(client, gateway, sess, store, logger)
	confirmation, err := orch.Checkout(ctx, booking.CheckoutRequest{
		Event:       &detail.Event,
		Lines:       lines,
		Date:        *date,
		TimeSlot:    *slot,
		Discount:    applied,
		PaymentMode: "online",
		BookingType: "event",
	})
	if err != nil {
		log.Fatal("Booking failed:", err)
	}

	fmt.Printf("Booking confirmed: %s (code %s)\n", confirmation.BookingID, confirmation.BookingCode)
	fmt.Printf("  %d ticket(s), total ₹%.2f\n", confirmation.TotalItems(), confirmation.Total)
}
