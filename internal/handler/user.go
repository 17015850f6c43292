package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-catalog/internal/apperror"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/service"
)

// UserStore is implemented by *repository.UserRepo.
type UserStore interface {
	ListAll(ctx context.Context) ([]model.UserRow, error)
	ListActive(ctx context.Context) ([]model.UserRow, error)
	Create(ctx context.Context, u model.NewUser) (uint64, error)
	GetContact(ctx context.Context, id uint64) (model.UserContact, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

// UserHandler serves user listing, creation and the activation toggles.
type UserHandler struct {
	Users        UserStore
	Events       service.UserEventPublisher
	Log          *zap.Logger
	QueryTimeout time.Duration
}

// NewUserHandler panics on a nil store. A nil publisher disables events.
func NewUserHandler(users UserStore, events service.UserEventPublisher, log *zap.Logger, queryTimeout time.Duration) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{Users: users, Events: events, Log: log, QueryTimeout: queryTimeout}
}

type userIDQuery struct {
	ID uint64 `query:"id" validate:"required"`
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(c echo.Context) error {
	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Users.ListAll(ctx)
	if err != nil {
		return apperror.Store(err)
	}
	if rows == nil {
		rows = []model.UserRow{}
	}
	return respondData(c, http.StatusOK, rows)
}

// ListActiveUsers handles GET /users/active.
func (h *UserHandler) ListActiveUsers(c echo.Context) error {
	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	rows, err := h.Users.ListActive(ctx)
	if err != nil {
		return apperror.Store(err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("No active users found")
	}
	return respondData(c, http.StatusOK, rows)
}

// CreateUser handles POST /users/create. The new user is always active.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var body model.NewUser
	if err := c.Bind(&body); err != nil {
		return apperror.Validation("Invalid request body")
	}

	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	id, err := h.Users.Create(ctx, body)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return apperror.Validation("Password must be at most 72 bytes")
		}
		if errors.Is(err, repository.ErrDuplicateUser) {
			h.Log.Warn("user name or email already taken", zap.String("user_name", body.UserName), zap.String("email", body.Email))
		}
		return apperror.Store(err)
	}

	h.publish(c, service.NewUserEvent(queue.UserCreated, id, body.UserName, body.Email))
	return respondMessage(c, http.StatusCreated,
		fmt.Sprintf("User %s with email %s has been created", body.UserName, body.Email))
}

// DeactivateUser handles PATCH /users/deactivate?id=.
func (h *UserHandler) DeactivateUser(c echo.Context) error {
	return h.toggleActive(c, false)
}

// ActivateUser handles PATCH /users/activate?id=.
func (h *UserHandler) ActivateUser(c echo.Context) error {
	return h.toggleActive(c, true)
}

// toggleActive reads the user's contact details, then writes the flag. The
// write is only issued once the read found the user; the two statements are
// not wrapped in a transaction.
func (h *UserHandler) toggleActive(c echo.Context, active bool) error {
	id, verr := userIDFromQuery(c)
	if verr != nil {
		return verr
	}

	ctx, cancel := queryContext(c, h.QueryTimeout)
	defer cancel()

	contact, err := h.Users.GetContact(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("User not found")
		}
		return apperror.Store(err)
	}

	if err := h.Users.SetActive(ctx, id, active); err != nil {
		return apperror.Store(err)
	}

	verb, evType := "deactivated", queue.UserDeactivated
	if active {
		verb, evType = "activated", queue.UserActivated
	}
	h.publish(c, service.NewUserEvent(evType, id, contact.Name(), contact.Address()))
	return respondMessage(c, http.StatusOK,
		fmt.Sprintf("User with username '%s' and email '%s' has been %s", contact.Name(), contact.Address(), verb))
}

func userIDFromQuery(c echo.Context) (uint64, *apperror.Error) {
	if c.QueryParam("id") == "" {
		return 0, apperror.Validation("User id is required")
	}
	var q userIDQuery
	if err := bindQuery(c, &q); err != nil {
		return 0, apperror.Validation("User id must be a positive integer")
	}
	if err := c.Validate(&q); err != nil {
		return 0, apperror.Validation("User id must be a positive integer")
	}
	return q.ID, nil
}

// publish hands ev to the broker. Failures never change the response.
func (h *UserHandler) publish(c echo.Context, ev queue.UserLifecycleEvent) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Events.PublishUserEvent(ctx, ev); err != nil {
		h.Log.Warn("user event not published", zap.String("type", ev.Type), zap.Uint64("user_id", ev.UserID), zap.Error(err))
	}
}
