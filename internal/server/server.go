package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/helmdeck/helm/internal/config"
	"github.com/helmdeck/helm/internal/handler"
	"github.com/helmdeck/helm/internal/handler/agent"
	"github.com/helmdeck/helm/internal/handler/chat"
	"github.com/helmdeck/helm/internal/handler/task"
	"github.com/helmdeck/helm/internal/handler/ws"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/middleware"
	"github.com/helmdeck/helm/internal/svc"
)

// ServerOptions holds optional dependencies for the server.
type ServerOptions struct {
	SvcCtx *svc.ServiceContext // Pre-initialized service context
	Quiet  bool                // Suppress startup messages for clean CLI output
}

// Run starts the server with the given configuration. It blocks until
// the context is cancelled or startup fails.
func Run(ctx context.Context, c config.Config, opts ...ServerOptions) error {
	var o ServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return run(ctx, c, o)
}

func run(ctx context.Context, c config.Config, opts ServerOptions) error {
	if err := checkPortAvailable(c.Port); err != nil {
		return fmt.Errorf("port %d is already in use", c.Port)
	}

	svcCtx := opts.SvcCtx
	if svcCtx == nil {
		var err error
		svcCtx, err = svc.NewServiceContext(c)
		if err != nil {
			return err
		}
		defer svcCtx.Close()
	}

	r := chi.NewRouter()

	if !opts.Quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.CORS(c))

	// Health check at root
	r.Get("/health", handler.HealthCheckHandler(svcCtx))

	r.Route("/api/v1", func(r chi.Router) {
		registerChatRoutes(r, svcCtx)
		registerAgentRoutes(r, svcCtx)
		registerTaskRoutes(r, svcCtx)
	})

	// Realtime observer socket
	go svcCtx.Hub.Run(ctx)
	r.Get("/ws", ws.WSHandler(svcCtx))

	if err := svcCtx.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// Note: ReadTimeout/WriteTimeout are intentionally omitted. They set
	// deadlines on the underlying net.Conn, which breaks long-lived SSE
	// turns and hijacked WebSocket connections. Keepalive is handled via
	// ping/pong in the realtime package.
	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", c.Port),
		Handler:     r,
		IdleTimeout: 120 * time.Second,
	}

	if !opts.Quiet {
		fmt.Printf("Server ready at http://localhost:%d\n", c.Port)
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	if !opts.Quiet {
		fmt.Println("\nShutting down server gracefully...")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svcCtx.Scheduler.Stop()
	httpServer.Shutdown(shutdownCtx)
	return nil
}

func registerChatRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Get("/chats", chat.ListChatsHandler(svcCtx))
	r.Post("/chats", chat.CreateChatHandler(svcCtx))
	r.Get("/chats/{id}", chat.GetChatHandler(svcCtx))
	r.Put("/chats/{id}", chat.UpdateChatHandler(svcCtx))
	r.Delete("/chats/{id}", chat.DeleteChatHandler(svcCtx))
	r.Get("/chats/{id}/messages", chat.ListChatMessagesHandler(svcCtx))

	// Streaming turn lifecycle
	r.Post("/chats/{id}/messages", chat.SendMessageHandler(svcCtx))
	r.Post("/chats/{id}/permission", chat.ResolvePermissionHandler(svcCtx))
	r.Post("/chats/{id}/input", chat.ProvideInputHandler(svcCtx))
	r.Post("/chats/{id}/cancel", chat.CancelTurnHandler(svcCtx))
	r.Get("/chats/{id}/session", chat.SessionStatusHandler(svcCtx))
}

func registerAgentRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Get("/agents", agent.ListAgentsHandler(svcCtx))
	r.Post("/agents", agent.CreateAgentHandler(svcCtx))
	r.Get("/agents/{id}", agent.GetAgentHandler(svcCtx))
	r.Put("/agents/{id}", agent.UpdateAgentHandler(svcCtx))
	r.Delete("/agents/{id}", agent.DeleteAgentHandler(svcCtx))
}

func registerTaskRoutes(r chi.Router, svcCtx *svc.ServiceContext) {
	r.Get("/tasks", task.ListTasksHandler(svcCtx))
	r.Post("/tasks", task.CreateTaskHandler(svcCtx))
	r.Get("/tasks/{id}", task.GetTaskHandler(svcCtx))
	r.Put("/tasks/{id}", task.UpdateTaskHandler(svcCtx))
	r.Delete("/tasks/{id}", task.DeleteTaskHandler(svcCtx))
	r.Post("/tasks/{id}/toggle", task.ToggleTaskHandler(svcCtx))
	r.Post("/tasks/{id}/run", task.RunTaskHandler(svcCtx))
	r.Get("/tasks/{id}/runs", task.ListTaskRunsHandler(svcCtx))
}

// checkPortAvailable reports whether the TCP port can be bound.
func checkPortAvailable(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}
