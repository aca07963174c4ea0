package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	LegalMoves(ctx context.Context, gameID string, seat rings.Player) ([]rings.Placement, error)
	History(ctx context.Context, playerID string) ([]*entity.Result, error)
}

type authService interface {
	ParseToken(token string) (string, error)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	authService authService

	router chi.Router
}

func New(logger *slog.Logger, gameUseCase gameUseCase, authService authService, allowedOrigins []string) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,
		authService: authService,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         60 * 15,
	}))

	r.Get("/ping", server.ping)

	r.Route("/games/{id}", func(rr chi.Router) {
		rr.Get("/", server.getGame)
		rr.Get("/moves", server.getLegalMoves)
	})

	r.With(server.authenticate).Get("/history", server.getHistory)

	server.router = r

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start runs the HTTP server until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
