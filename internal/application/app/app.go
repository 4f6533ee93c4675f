// Package app assembles the client: one store, its session manager, the
// sync adapters and the active-board watcher. Build one App per process and
// hand it to whatever drives the client.
package app

import (
	"context"
	"fmt"

	"github.com/taskboard/client/internal/adapters/rest"
	"github.com/taskboard/client/internal/application/services"
	"github.com/taskboard/client/internal/application/session"
	"github.com/taskboard/client/internal/application/store"
	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/config"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/infrastructure/metrics"
	"github.com/taskboard/client/internal/ports"
)

// ComponentKind selects what HandleAddComponent creates.
type ComponentKind string

const (
	ComponentTaskboard ComponentKind = "taskboard"
	ComponentTaskcard  ComponentKind = "taskcard"
)

// Deps are the collaborators App is built from. Remote may be nil, in which
// case a REST client for API is created with the session as token source.
type Deps struct {
	API     config.APIConfig
	Storage ports.SessionStorage
	Remote  ports.RemoteAPI
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// App exposes state, dispatch and the sync adapters.
type App struct {
	Store   *store.Store
	Session *session.Manager
	Boards  *services.BoardService
	Cards   *services.CardService
	Tasks   *services.TaskService
	Auth    *services.AuthService
	Loader  *services.Loader

	logger    *logger.Logger
	stopWatch func()
}

// New builds the App. The initial state is read from deps.Storage.
func New(ctx context.Context, deps Deps) (*App, error) {
	if deps.Storage == nil {
		return nil, fmt.Errorf("session storage is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	manager := session.NewManager(deps.Storage, log)

	remote := deps.Remote
	if remote == nil {
		client, err := rest.New(rest.Options{
			BaseURL:   deps.API.BaseURL,
			Timeout:   deps.API.Timeout,
			RateLimit: deps.API.RateLimit,
			RateBurst: deps.API.RateBurst,
			Tokens:    manager,
			Logger:    log,
			Metrics:   deps.Metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create api client: %w", err)
		}
		remote = client
	}

	st := store.New(manager.InitialState(ctx), manager, log, deps.Metrics)

	tasks := services.NewTaskService(st, remote, log)
	a := &App{
		Store:   st,
		Session: manager,
		Boards:  services.NewBoardService(st, remote, log),
		Cards:   services.NewCardService(st, remote, log),
		Tasks:   tasks,
		Auth:    services.NewAuthService(st, remote, log),
		Loader:  services.NewLoader(st, remote, remote, tasks, log),
		logger:  log.WithComponent("app"),
	}
	a.stopWatch = a.Loader.Watch(st)

	return a, nil
}

// State returns the current aggregate.
func (a *App) State() state.State {
	return a.Store.State()
}

// Dispatch applies one action.
func (a *App) Dispatch(ctx context.Context, action state.Action) state.State {
	return a.Store.Dispatch(ctx, action)
}

// HandleAddComponent creates a taskboard or a taskcard named name and, once
// the service has confirmed it, closes the caller's dialog. The dialog stays
// open on failure.
func (a *App) HandleAddComponent(ctx context.Context, name string, setDialogOpen func(bool), kind ComponentKind) error {
	var err error
	switch kind {
	case ComponentTaskboard:
		_, err = a.Boards.CreateBoard(ctx, name)
	case ComponentTaskcard:
		_, err = a.Cards.CreateCard(ctx, name)
	default:
		a.logger.Errorw("Unknown component kind", "kind", kind)
		return fmt.Errorf("%w: %q", entities.ErrUnknownComponent, kind)
	}
	if err != nil {
		return err
	}

	if setDialogOpen != nil {
		setDialogOpen(false)
	}
	return nil
}

// Close detaches the active-board watcher.
func (a *App) Close() {
	if a.stopWatch != nil {
		a.stopWatch()
		a.stopWatch = nil
	}
}
