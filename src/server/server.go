package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradejournal/src/auth"
	"tradejournal/src/handler"
	"tradejournal/src/repository"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// NewRouter assembles the API. Everything except the healthcheck sits behind
// token auth.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck write error")
		}
	})

	users := repository.NewUserRepository()

	listPositions, getPosition, createPosition, closePosition := handler.DefaultPositionHandlers()
	preview, previewStream := handler.DefaultPreviewHandlers()
	createTx, listPositionTx, realizedPL := handler.DefaultTransactionHandlers()
	createEntry, listEntries, updateEntry, deleteEntry := handler.DefaultJournalHandlers()
	listSpecs, upsertSpec := handler.DefaultContractSpecHandlers()
	profile, updateProfile, changePassword := handler.DefaultUserHandlers()

	r.Group(func(r chi.Router) {
		r.Use(auth.TokenMiddleware(users))

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", listPositions)
			r.Post("/", createPosition)
			r.Get("/{id}", getPosition)
			r.Post("/{id}/close", closePosition)
			r.Get("/{id}/transactions", listPositionTx)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/{symbol}/preview", preview)
			r.Get("/{symbol}/stream", previewStream)
		})
		r.Route("/contract-specs", func(r chi.Router) {
			r.Get("/", listSpecs)
			r.Put("/", upsertSpec)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", createTx)
			r.Get("/realized-pl", realizedPL)
		})
		r.Post("/import/transactions", handler.DefaultImportHandler())

		r.Route("/journal", func(r chi.Router) {
			r.Get("/", listEntries)
			r.Post("/", createEntry)
			r.Put("/{id}", updateEntry)
			r.Delete("/{id}", deleteEntry)
		})

		r.Get("/exceptions", handler.DefaultExceptionsHandler())

		r.Route("/me", func(r chi.Router) {
			r.Get("/", profile)
			r.Put("/", updateProfile)
			r.Post("/password", changePassword)
		})
	})

	return r
}

func StartServer(port string) {
	r := NewRouter()

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
