package services

import (
	"context"
	"sync"

	"github.com/taskboard/client/internal/application/store"
	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/domain/state"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

// fakeAPI records calls and replies from canned data. Setting err makes every
// call fail with it.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	err   error

	boards      ports.TaskboardsResponse
	cards       map[int][]entities.Taskcard
	tasks       map[int][]entities.Task
	sharedUsers []int
	nextID      int
	lastUpdate  *ports.UpdateTaskRequest
	lastShare   *ports.ShareTaskboardRequest
	auth        ports.AuthResponse
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		cards:  map[int][]entities.Taskcard{},
		tasks:  map[int][]entities.Task{},
		nextID: 100,
	}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) id() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) ListTaskboards(ctx context.Context) (*ports.TaskboardsResponse, error) {
	if err := f.record("ListTaskboards"); err != nil {
		return nil, err
	}
	resp := f.boards
	return &resp, nil
}

func (f *fakeAPI) CreateTaskboard(ctx context.Context, req ports.CreateTaskboardRequest) (*entities.Taskboard, error) {
	if err := f.record("CreateTaskboard"); err != nil {
		return nil, err
	}
	return &entities.Taskboard{ID: f.id(), BoardTitle: req.TaskboardTitle}, nil
}

func (f *fakeAPI) RenameTaskboard(ctx context.Context, id int, req ports.RenameTaskboardRequest) (*entities.Taskboard, error) {
	if err := f.record("RenameTaskboard"); err != nil {
		return nil, err
	}
	return &entities.Taskboard{ID: id, BoardTitle: req.TaskboardTitle}, nil
}

func (f *fakeAPI) DeleteTaskboard(ctx context.Context, id int) (*entities.Taskboard, error) {
	if err := f.record("DeleteTaskboard"); err != nil {
		return nil, err
	}
	return &entities.Taskboard{ID: id}, nil
}

func (f *fakeAPI) ShareTaskboard(ctx context.Context, id int, req ports.ShareTaskboardRequest) (*ports.ShareTaskboardResponse, error) {
	if err := f.record("ShareTaskboard"); err != nil {
		return nil, err
	}
	f.lastShare = &req
	return &ports.ShareTaskboardResponse{SharedUsers: f.sharedUsers}, nil
}

func (f *fakeAPI) ListTaskcards(ctx context.Context, taskboardID int) ([]entities.Taskcard, error) {
	if err := f.record("ListTaskcards"); err != nil {
		return nil, err
	}
	return f.cards[taskboardID], nil
}

func (f *fakeAPI) CreateTaskcard(ctx context.Context, taskboardID int, req ports.TaskcardRequest) (*entities.Taskcard, error) {
	if err := f.record("CreateTaskcard"); err != nil {
		return nil, err
	}
	return &entities.Taskcard{ID: f.id(), CardTitle: req.CardTitle, TaskboardID: taskboardID}, nil
}

func (f *fakeAPI) RenameTaskcard(ctx context.Context, id int, req ports.TaskcardRequest) (*entities.Taskcard, error) {
	if err := f.record("RenameTaskcard"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeAPI) DeleteTaskcard(ctx context.Context, id int) error {
	return f.record("DeleteTaskcard")
}

func (f *fakeAPI) ClearTaskcards(ctx context.Context, taskboardID int) error {
	return f.record("ClearTaskcards")
}

func (f *fakeAPI) ListTasks(ctx context.Context, taskcardID int) ([]entities.Task, error) {
	if err := f.record("ListTasks"); err != nil {
		return nil, err
	}
	return f.tasks[taskcardID], nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, taskcardID int, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return nil, err
	}
	return &entities.Task{ID: f.id(), Title: req.TaskTitle, TaskcardID: taskcardID}, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id int, req ports.UpdateTaskRequest) (*entities.Task, error) {
	if err := f.record("UpdateTask"); err != nil {
		return nil, err
	}
	f.lastUpdate = &req
	return nil, nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id int) error {
	return f.record("DeleteTask")
}

func (f *fakeAPI) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	if err := f.record("Login"); err != nil {
		return nil, err
	}
	resp := f.auth
	return &resp, nil
}

func (f *fakeAPI) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthResponse, error) {
	if err := f.record("Register"); err != nil {
		return nil, err
	}
	resp := f.auth
	return &resp, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	return f.record("Logout")
}

func (f *fakeAPI) ExchangeOAuthCode(ctx context.Context, provider entities.OAuthProvider, req ports.OAuthCodeRequest) (*ports.AuthResponse, error) {
	if err := f.record("ExchangeOAuthCode:" + string(provider)); err != nil {
		return nil, err
	}
	resp := f.auth
	return &resp, nil
}

// boardsStore returns a logged-in store holding the boards. An active id of
// 0 means NoBoards.
func boardsStore(active int, own []entities.Taskboard, shared []entities.Taskboard) *store.Store {
	s := state.Default()
	s.IsLoggedIn = true
	selection := state.Active(active)
	if active == 0 {
		selection = state.NoBoards()
	}
	s, _ = state.Reduce(s, state.SetTaskboards{
		Taskboards:      state.Taskboards{UserTaskboards: own, SharedTaskboards: shared},
		ActiveTaskboard: selection,
	})
	return store.New(s, nil, logger.NewNop(), nil)
}
