package devserver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/ports"
)

var (
	errNotFound      = errors.New("not found")
	errForbidden     = errors.New("forbidden")
	errAlreadyExists = errors.New("already exists")
	errBadPassword   = errors.New("invalid credentials")
	errEventOverlap  = errors.New("event overlaps another event")
	errEventWindow   = errors.New("event end must be after event start")
)

type account struct {
	entities.User
	PasswordHash string
}

type board struct {
	ID      int
	Title   string
	OwnerID int
	Shared  []int
}

// Data is the devserver's in-memory database.
type Data struct {
	mu       sync.RWMutex
	accounts map[int]*account
	boards   map[int]*board
	cards    map[int]*entities.Taskcard
	tasks    map[int]*entities.Task
	nextID   int
}

func NewData() *Data {
	return &Data{
		accounts: map[int]*account{},
		boards:   map[int]*board{},
		cards:    map[int]*entities.Taskcard{},
		tasks:    map[int]*entities.Task{},
	}
}

func (d *Data) id() int {
	d.nextID++
	return d.nextID
}

// Accounts

func (d *Data) Register(email, password, username string) (entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entities.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	email = strings.ToLower(email)
	for _, a := range d.accounts {
		if a.Email == email {
			return entities.User{}, fmt.Errorf("user with email %s %w", email, errAlreadyExists)
		}
	}

	a := &account{
		User:         entities.User{ID: d.id(), Email: email, Username: username},
		PasswordHash: string(hash),
	}
	d.accounts[a.ID] = a
	return a.User, nil
}

func (d *Data) Authenticate(email, password string) (entities.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a := d.accountByEmail(strings.ToLower(email))
	if a == nil || a.PasswordHash == "" {
		return entities.User{}, errBadPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return entities.User{}, errBadPassword
	}
	return a.User, nil
}

// OAuthAccount finds or creates the account behind a provider identity.
func (d *Data) OAuthAccount(provider entities.OAuthProvider, email, username string) entities.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	email = strings.ToLower(email)
	a := d.accountByEmail(email)
	if a == nil {
		a = &account{User: entities.User{ID: d.id(), Email: email, Username: username}}
		d.accounts[a.ID] = a
	}
	if provider == entities.OAuthGoogle {
		a.HasUsedGoogleOauth = true
	}
	return a.User
}

func (d *Data) accountByEmail(email string) *account {
	for _, a := range d.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

// Boards

func (d *Data) toTaskboard(b *board, withOwner bool) entities.Taskboard {
	tb := entities.Taskboard{ID: b.ID, BoardTitle: b.Title, SharedUsers: append([]int{}, b.Shared...)}
	if withOwner {
		if owner, ok := d.accounts[b.OwnerID]; ok {
			tb.Owner = &entities.BoardOwner{Username: owner.Username}
		}
	}
	return tb
}

func (d *Data) canAccess(b *board, userID int) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, id := range b.Shared {
		if id == userID {
			return true
		}
	}
	return false
}

// boardFor returns the board when userID may see it; owner restricts to the owner.
func (d *Data) boardFor(id, userID int, owner bool) (*board, error) {
	b, ok := d.boards[id]
	if !ok || !d.canAccess(b, userID) {
		return nil, errNotFound
	}
	if owner && b.OwnerID != userID {
		return nil, errForbidden
	}
	return b, nil
}

func (d *Data) ListTaskboards(userID int) ports.TaskboardsResponse {
	d.mu.RLock()
	defer d.mu.RUnlock()

	resp := ports.TaskboardsResponse{
		UserTaskboards:   []entities.Taskboard{},
		SharedTaskboards: []entities.Taskboard{},
	}
	for _, id := range sortedKeys(d.boards) {
		b := d.boards[id]
		switch {
		case b.OwnerID == userID:
			resp.UserTaskboards = append(resp.UserTaskboards, d.toTaskboard(b, false))
		case d.canAccess(b, userID):
			resp.SharedTaskboards = append(resp.SharedTaskboards, d.toTaskboard(b, true))
		}
	}
	return resp
}

func (d *Data) CreateTaskboard(userID int, title string) entities.Taskboard {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := &board{ID: d.id(), Title: title, OwnerID: userID, Shared: []int{}}
	d.boards[b.ID] = b
	return d.toTaskboard(b, false)
}

func (d *Data) RenameTaskboard(userID, id int, title string) (entities.Taskboard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.boardFor(id, userID, true)
	if err != nil {
		return entities.Taskboard{}, err
	}
	b.Title = title
	return d.toTaskboard(b, false), nil
}

// ShareTaskboard replaces the share list with the accounts behind emails.
func (d *Data) ShareTaskboard(userID, id int, emails []string) ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.boardFor(id, userID, true)
	if err != nil {
		return nil, err
	}

	shared := []int{}
	for _, email := range emails {
		a := d.accountByEmail(strings.ToLower(strings.TrimSpace(email)))
		if a == nil {
			return nil, fmt.Errorf("no account for %s: %w", email, errNotFound)
		}
		if a.ID != userID && !containsInt(shared, a.ID) {
			shared = append(shared, a.ID)
		}
	}
	b.Shared = shared
	return append([]int{}, shared...), nil
}

func (d *Data) DeleteTaskboard(userID, id int) (entities.Taskboard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.boardFor(id, userID, true)
	if err != nil {
		return entities.Taskboard{}, err
	}
	for cardID, c := range d.cards {
		if c.TaskboardID == id {
			d.deleteCard(cardID)
		}
	}
	delete(d.boards, id)
	return d.toTaskboard(b, false), nil
}

// Cards

func (d *Data) cardFor(id, userID int) (*entities.Taskcard, error) {
	c, ok := d.cards[id]
	if !ok {
		return nil, errNotFound
	}
	if _, err := d.boardFor(c.TaskboardID, userID, false); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *Data) ListTaskcards(userID, boardID int) ([]entities.Taskcard, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, err := d.boardFor(boardID, userID, false); err != nil {
		return nil, err
	}
	cards := []entities.Taskcard{}
	for _, id := range sortedKeys(d.cards) {
		if c := d.cards[id]; c.TaskboardID == boardID {
			cards = append(cards, *c)
		}
	}
	return cards, nil
}

func (d *Data) CreateTaskcard(userID, boardID int, title string) (entities.Taskcard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.boardFor(boardID, userID, false); err != nil {
		return entities.Taskcard{}, err
	}
	c := &entities.Taskcard{ID: d.id(), CardTitle: title, TaskboardID: boardID}
	d.cards[c.ID] = c
	return *c, nil
}

func (d *Data) RenameTaskcard(userID, id int, title string) (entities.Taskcard, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.cardFor(id, userID)
	if err != nil {
		return entities.Taskcard{}, err
	}
	c.CardTitle = title
	return *c, nil
}

func (d *Data) DeleteTaskcard(userID, id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.cardFor(id, userID); err != nil {
		return err
	}
	d.deleteCard(id)
	return nil
}

func (d *Data) ClearTaskcards(userID, boardID int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.boardFor(boardID, userID, true); err != nil {
		return err
	}
	for id, c := range d.cards {
		if c.TaskboardID == boardID {
			d.deleteCard(id)
		}
	}
	return nil
}

func (d *Data) deleteCard(id int) {
	for taskID, t := range d.tasks {
		if t.TaskcardID == id {
			delete(d.tasks, taskID)
		}
	}
	delete(d.cards, id)
}

// Tasks

func (d *Data) taskFor(id, userID int) (*entities.Task, *board, error) {
	t, ok := d.tasks[id]
	if !ok {
		return nil, nil, errNotFound
	}
	c, err := d.cardFor(t.TaskcardID, userID)
	if err != nil {
		return nil, nil, err
	}
	b, err := d.boardFor(c.TaskboardID, userID, false)
	if err != nil {
		return nil, nil, err
	}
	return t, b, nil
}

func (d *Data) ListTasks(userID, cardID int) ([]entities.Task, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, err := d.cardFor(cardID, userID); err != nil {
		return nil, err
	}
	tasks := []entities.Task{}
	for _, id := range sortedKeys(d.tasks) {
		if t := d.tasks[id]; t.TaskcardID == cardID {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}

func (d *Data) CreateTask(userID, cardID int, title string) (entities.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.cardFor(cardID, userID); err != nil {
		return entities.Task{}, err
	}
	t := &entities.Task{ID: d.id(), Title: title, TaskcardID: cardID}
	d.tasks[t.ID] = t
	return *t, nil
}

// UpdateTask replaces title, description and reminder dates. Events may not
// overlap other events on boards owned by the same account.
func (d *Data) UpdateTask(userID, id int, req ports.UpdateTaskRequest) (entities.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, b, err := d.taskFor(id, userID)
	if err != nil {
		return entities.Task{}, err
	}

	if req.EventStartDate != nil || req.EventEndDate != nil {
		if req.EventStartDate == nil || req.EventEndDate == nil || !req.EventEndDate.After(*req.EventStartDate) {
			return entities.Task{}, errEventWindow
		}
		if d.overlapsEvent(b.OwnerID, id, *req.EventStartDate, *req.EventEndDate) {
			return entities.Task{}, errEventOverlap
		}
	}

	description := req.Description
	t.Title = req.TaskTitle
	t.Description = &description
	t.DeadlineDate = copyTime(req.DeadlineDate)
	t.EventStartDate = copyTime(req.EventStartDate)
	t.EventEndDate = copyTime(req.EventEndDate)
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	return *t, nil
}

func (d *Data) overlapsEvent(ownerID, taskID int, start, end time.Time) bool {
	for _, other := range d.tasks {
		if other.ID == taskID || other.Mode() != entities.ReminderEvent {
			continue
		}
		c, ok := d.cards[other.TaskcardID]
		if !ok {
			continue
		}
		if b, ok := d.boards[c.TaskboardID]; !ok || b.OwnerID != ownerID {
			continue
		}
		if start.Before(*other.EventEndDate) && other.EventStartDate.Before(end) {
			return true
		}
	}
	return false
}

func (d *Data) DeleteTask(userID, id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, _, err := d.taskFor(id, userID); err != nil {
		return err
	}
	delete(d.tasks, id)
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
