package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/client/internal/domain/entities"
	"github.com/taskboard/client/internal/infrastructure/logger"
	"github.com/taskboard/client/internal/ports"
)

const (
	contextUserID = "user"
	contextClaims = "claims"
)

// Handler serves the taskboard REST surface from Data
type Handler struct {
	data   *Data
	tokens *Tokens
	logger *logger.Logger
}

// NewHandler creates a new handler
func NewHandler(data *Data, tokens *Tokens, logger *logger.Logger) *Handler {
	return &Handler{
		data:   data,
		tokens: tokens,
		logger: logger,
	}
}

// boardPatch is either a rename or a share request.
type boardPatch struct {
	TaskboardTitle *string   `json:"taskboardTitle"`
	Emails         *[]string `json:"emails"`
}

// Account

// Register handles account creation
func (h *Handler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.data.Register(req.Email, req.Password, req.Username)
	if err != nil {
		h.logger.Warnw("Registration failed", "error", err, "email", req.Email)
		return dataError(err)
	}

	h.logger.Infow("Account registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, ports.AuthResponse{User: user})
}

// Login handles password login
func (h *Handler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.data.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.LogSecurityEvent("login_failed", "", c.RealIP(), map[string]interface{}{"email": req.Email})
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return h.session(c, user)
}

// OAuth exchanges a provider code. The devserver trusts the code and reads
// it as the account's username.
func (h *Handler) OAuth(c echo.Context) error {
	provider := entities.OAuthProvider(c.Param("provider"))
	if !provider.IsValid() {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown provider")
	}

	var req ports.OAuthCodeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	username := strings.ToLower(strings.TrimSpace(req.Code))
	user := h.data.OAuthAccount(provider, username+"@"+string(provider)+".example", username)
	return h.session(c, user)
}

// Logout revokes the caller's token
func (h *Handler) Logout(c echo.Context) error {
	if claims, ok := c.Get(contextClaims).(*Claims); ok {
		h.tokens.Revoke(claims)
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logged out successfully"})
}

func (h *Handler) session(c echo.Context, user entities.User) error {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}
	h.logger.Infow("Session started", "user_id", user.ID)
	return c.JSON(http.StatusOK, ports.AuthResponse{User: user, AccessToken: token})
}

// Taskboards

func (h *Handler) ListTaskboards(c echo.Context) error {
	return c.JSON(http.StatusOK, h.data.ListTaskboards(userID(c)))
}

func (h *Handler) CreateTaskboard(c echo.Context) error {
	var req ports.CreateTaskboardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.data.CreateTaskboard(userID(c), req.TaskboardTitle))
}

// PatchTaskboard renames the board or, when emails is present, replaces its
// share list.
func (h *Handler) PatchTaskboard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req boardPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	switch {
	case req.Emails != nil:
		shared, err := h.data.ShareTaskboard(userID(c), id, *req.Emails)
		if err != nil {
			return dataError(err)
		}
		return c.JSON(http.StatusOK, ports.ShareTaskboardResponse{SharedUsers: shared})

	case req.TaskboardTitle != nil && *req.TaskboardTitle != "":
		board, err := h.data.RenameTaskboard(userID(c), id, *req.TaskboardTitle)
		if err != nil {
			return dataError(err)
		}
		return c.JSON(http.StatusOK, board)

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "taskboardTitle or emails is required")
	}
}

func (h *Handler) DeleteTaskboard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	board, err := h.data.DeleteTaskboard(userID(c), id)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, board)
}

// Taskcards

func (h *Handler) ListTaskcards(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	cards, err := h.data.ListTaskcards(userID(c), id)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (h *Handler) CreateTaskcard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req ports.TaskcardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	card, err := h.data.CreateTaskcard(userID(c), id, req.CardTitle)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusCreated, card)
}

func (h *Handler) RenameTaskcard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req ports.TaskcardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	card, err := h.data.RenameTaskcard(userID(c), id, req.CardTitle)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, card)
}

func (h *Handler) DeleteTaskcard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.data.DeleteTaskcard(userID(c), id); err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Taskcard deleted"})
}

func (h *Handler) ClearTaskcards(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.data.ClearTaskcards(userID(c), id); err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Taskcards cleared"})
}

// Tasks

func (h *Handler) ListTasks(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tasks, err := h.data.ListTasks(userID(c), id)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req ports.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.data.CreateTask(userID(c), id, req.TaskTitle)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req ports.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.data.UpdateTask(userID(c), id, req)
	if err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.data.DeleteTask(userID(c), id); err != nil {
		return dataError(err)
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted"})
}

// Helper functions

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func paramID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func userID(c echo.Context) int {
	id, _ := c.Get(contextUserID).(int)
	return id
}

// dataError maps Data errors onto HTTP statuses.
func dataError(err error) error {
	switch {
	case errors.Is(err, errNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Only the owner can do that")
	case errors.Is(err, errAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errEventOverlap):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errEventWindow):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return err
	}
}
