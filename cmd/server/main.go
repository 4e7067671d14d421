package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/database"
	"github.com/gdg-garage/convention-booking/internal/graph"
	"github.com/gdg-garage/convention-booking/internal/handlers"
	"github.com/gdg-garage/convention-booking/internal/notifier"
	"github.com/gdg-garage/convention-booking/internal/storage"
	"github.com/gdg-garage/convention-booking/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	db := database.Connect(cfg)

	files, err := storage.New(context.Background(), cfg)
	if err != nil {
		logrus.Fatalf("Failed to set up file storage: %v", err)
	}

	bookings := store.New(db, store.WithStrictBookings(cfg.StrictBookings))

	// Bookings are still accepted without Discord notifications.
	var notify notifier.Notifier
	if discordNotifier, err := notifier.NewDiscordNotifier(cfg); err != nil {
		logrus.Warnf("Discord notifier not initialized: %v", err)
	} else {
		notify = discordNotifier
	}

	authHandler := auth.NewAuthHandler(cfg, db)
	h := handlers.Handlers{
		Store:        bookings,
		Auth:         authHandler,
		Events:       handlers.NewEventHandler(bookings, files, authHandler),
		Bookings:     handlers.NewBookingHandler(bookings, files, authHandler),
		Transactions: handlers.NewTransactionHandler(bookings, authHandler),
		APIKeys:      handlers.NewAPIKeyHandler(db, authHandler),
		GraphQL:      &relay.Handler{Schema: graph.NewSchema(graph.NewResolver(bookings, files, notify))},
	}
	if local, ok := files.(*storage.Local); ok {
		h.Media = http.FileServer(http.Dir(local.Root()))
	}

	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, h)

	logrus.Infof("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
