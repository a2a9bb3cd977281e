package svc

import (
	"fmt"
	"net/http"
	"time"

	"github.com/helmdeck/helm/internal/agent/ai"
	"github.com/helmdeck/helm/internal/chat"
	"github.com/helmdeck/helm/internal/config"
	"github.com/helmdeck/helm/internal/db"
	"github.com/helmdeck/helm/internal/logging"
	"github.com/helmdeck/helm/internal/realtime"
	"github.com/helmdeck/helm/internal/scheduler"
)

// ServiceContext carries the wired application services. Handlers reach
// everything through it.
type ServiceContext struct {
	Config config.Config

	DB        *db.Store
	Mediator  *chat.Mediator
	Hub       *realtime.Hub
	Scheduler *scheduler.Scheduler
}

// NewServiceContext wires the full service graph: database, agent
// providers, mediator, WebSocket hub, and task scheduler.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	store, err := db.NewSQLite(c.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	var cliProvider *ai.CLIProvider
	if c.Agent.Command == "claude" && len(c.Agent.Args) == 0 {
		cliProvider = ai.NewClaudeProvider(c.Agent.WorkDir)
	} else {
		cliProvider = ai.NewCLIProvider(c.Agent.Command, c.Agent.Args, c.Agent.WorkDir)
	}
	providers := []ai.Provider{cliProvider}

	var titler chat.Titler
	if c.Anthropic.APIKey != "" {
		apiProvider := ai.NewAnthropicProvider(c.Anthropic.APIKey, c.Agent.Model)
		providers = append(providers, apiProvider)
		titler = apiProvider
		logging.Info("Anthropic API provider enabled")
	} else {
		logging.Info("No Anthropic API key configured, chat titles stay at their defaults")
	}

	mediator := chat.NewMediator(store, titler, providers...)
	if c.Agent.TurnTimeout != "" {
		d, err := time.ParseDuration(c.Agent.TurnTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid agent.turn_timeout %q: %w", c.Agent.TurnTimeout, err)
		}
		mediator.SetMaxTurnDuration(d)
	}
	hub := realtime.NewHub(originChecker(c))
	sched := scheduler.New(store, mediator)

	return &ServiceContext{
		Config:    c,
		DB:        store,
		Mediator:  mediator,
		Hub:       hub,
		Scheduler: sched,
	}, nil
}

// Close releases held resources.
func (svc *ServiceContext) Close() {
	if svc.Scheduler != nil {
		svc.Scheduler.Stop()
	}
	if svc.DB != nil {
		svc.DB.Close()
		logging.Info("SQLite database connection closed")
	}
	logging.Info("Service context closed")
}

// originChecker builds the WebSocket origin guard from the configured
// allowlist. An empty allowlist admits only same-host and local clients.
func originChecker(c config.Config) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(c.Security.AllowedOrigins))
	for _, o := range c.Security.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		return origin == "http://localhost:"+fmt.Sprint(c.Port) ||
			origin == "http://127.0.0.1:"+fmt.Sprint(c.Port)
	}
}
