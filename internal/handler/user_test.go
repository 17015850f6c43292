package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

type setActiveCall struct {
	id     uint64
	active bool
}

// fakeUsers keeps users in memory, keyed by id.
type fakeUsers struct {
	users     map[uint64]*model.UserRow
	nextID    uint64
	createErr error
	setErr    error
	err       error

	created  []model.NewUser
	setCalls []setActiveCall
}

func newFakeUsers(rows ...model.UserRow) *fakeUsers {
	f := &fakeUsers{users: map[uint64]*model.UserRow{}, nextID: 1}
	for i := range rows {
		r := rows[i]
		f.users[r.UserID] = &r
		if r.UserID >= f.nextID {
			f.nextID = r.UserID + 1
		}
	}
	return f
}

func (f *fakeUsers) ListAll(context.Context) ([]model.UserRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.UserRow
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) ListActive(context.Context) ([]model.UserRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.UserRow
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, u model.NewUser) (uint64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	id := f.nextID
	f.nextID++
	f.users[id] = &model.UserRow{UserID: id, UserName: ptr(u.UserName), Email: ptr(u.Email), IsActive: true}
	f.created = append(f.created, u)
	return id, nil
}

func (f *fakeUsers) GetContact(_ context.Context, id uint64) (model.UserContact, error) {
	if f.err != nil {
		return model.UserContact{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return model.UserContact{}, repository.ErrUserNotFound
	}
	return model.UserContact{UserName: u.UserName, Email: u.Email}, nil
}

func (f *fakeUsers) SetActive(_ context.Context, id uint64, active bool) error {
	f.setCalls = append(f.setCalls, setActiveCall{id: id, active: active})
	if f.setErr != nil {
		return f.setErr
	}
	if u, ok := f.users[id]; ok {
		u.IsActive = active
	}
	return nil
}

type fakePublisher struct {
	events []queue.UserLifecycleEvent
	err    error
}

func (p *fakePublisher) PublishUserEvent(_ context.Context, ev queue.UserLifecycleEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func userEcho(users *fakeUsers, pub *fakePublisher) *echo.Echo {
	e := newEcho()
	h := NewUserHandler(users, pub, zap.NewNop(), 0)
	e.GET("/users", h.ListUsers)
	e.GET("/users/active", h.ListActiveUsers)
	e.POST("/users/create", h.CreateUser)
	e.PATCH("/users/deactivate", h.DeactivateUser)
	e.PATCH("/users/activate", h.ActivateUser)
	return e
}

func TestNewUserHandler(t *testing.T) {
	assert.Panics(t, func() { NewUserHandler(nil, nil, nil, 0) })

	h := NewUserHandler(newFakeUsers(), nil, nil, 0)
	assert.NotNil(t, h.Events)
	assert.NotNil(t, h.Log)
}

func TestListUsers(t *testing.T) {
	e := userEcho(newFakeUsers(), &fakePublisher{})
	rec, env := do(t, e, http.MethodGet, "/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	users := newFakeUsers(model.UserRow{UserID: 1, UserName: ptr("ann"), Email: ptr("ann@example.com"), IsActive: true})
	e = userEcho(users, &fakePublisher{})
	rec, env = do(t, e, http.MethodGet, "/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"user_id":1,"user_name":"ann","email":"ann@example.com","is_active":true}]`, string(env.Data))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestListUsers_StoreFailure(t *testing.T) {
	users := newFakeUsers()
	users.err = errStore
	e := userEcho(users, &fakePublisher{})

	rec, env := do(t, e, http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database error", env.Message)
}

func TestListActiveUsers(t *testing.T) {
	users := newFakeUsers(
		model.UserRow{UserID: 1, UserName: ptr("ann"), Email: ptr("ann@example.com"), IsActive: true},
		model.UserRow{UserID: 2, UserName: ptr("bob"), Email: ptr("bob@example.com"), IsActive: false},
	)
	e := userEcho(users, &fakePublisher{})

	rec, env := do(t, e, http.MethodGet, "/users/active", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "ann")
	assert.NotContains(t, string(env.Data), "bob")

	e = userEcho(newFakeUsers(), &fakePublisher{})
	rec, env = do(t, e, http.MethodGet, "/users/active", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active users found", env.Message)
}

func TestCreateUser(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		users := newFakeUsers()
		pub := &fakePublisher{}
		e := userEcho(users, pub)

		rec, env := do(t, e, http.MethodPost, "/users/create", echo.MIMEApplicationJSON,
			`{"user_name":"alice","email":"a@example.com","password":"s3cret"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "success", env.Status)
		assert.Equal(t, "User alice with email a@example.com has been created", env.Message)

		require.Len(t, users.created, 1)
		assert.Equal(t, "s3cret", users.created[0].Password)
		assert.True(t, users.users[1].IsActive)

		require.Len(t, pub.events, 1)
		assert.Equal(t, queue.UserCreated, pub.events[0].Type)
		assert.Equal(t, uint64(1), pub.events[0].UserID)
	})

	t.Run("form body", func(t *testing.T) {
		users := newFakeUsers()
		e := userEcho(users, &fakePublisher{})

		rec, env := do(t, e, http.MethodPost, "/users/create", echo.MIMEApplicationForm,
			"user_name=bob&email=b%40example.com&password=pw")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "User bob with email b@example.com has been created", env.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		users := newFakeUsers()
		e := userEcho(users, &fakePublisher{})

		rec, env := do(t, e, http.MethodPost, "/users/create", echo.MIMEApplicationJSON, `{"user_name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", env.Message)
		assert.Empty(t, users.created)
	})

	t.Run("password too long", func(t *testing.T) {
		users := newFakeUsers()
		users.createErr = errors.Wrap(bcrypt.ErrPasswordTooLong, "hash password")
		e := userEcho(users, &fakePublisher{})

		rec, env := do(t, e, http.MethodPost, "/users/create", echo.MIMEApplicationJSON, `{"user_name":"x","email":"y","password":"z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Password must be at most 72 bytes", env.Message)
	})

	t.Run("duplicate rejected by store", func(t *testing.T) {
		users := newFakeUsers()
		users.createErr = errors.Wrap(repository.ErrDuplicateUser, "Duplicate entry 'x' for key 'user_name'")
		pub := &fakePublisher{}
		e := userEcho(users, pub)

		rec, env := do(t, e, http.MethodPost, "/users/create", echo.MIMEApplicationJSON, `{"user_name":"x","email":"y","password":"z"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Database error", env.Message)
		assert.Empty(t, pub.events)
	})

	t.Run("publish failure does not change response", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker down")}
		e := userEcho(newFakeUsers(), pub)

		rec, _ := do(t, e, http.MethodPost, "/users/create", echo.MIMEApplicationJSON, `{"user_name":"x","email":"y","password":"z"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, pub.events, 1)
	})
}

func TestDeactivateUser(t *testing.T) {
	users := newFakeUsers(model.UserRow{UserID: 5, UserName: ptr("carl"), Email: ptr("c@example.com"), IsActive: true})
	pub := &fakePublisher{}
	e := userEcho(users, pub)

	for i := 0; i < 2; i++ {
		rec, env := do(t, e, http.MethodPatch, "/users/deactivate?id=5", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User with username 'carl' and email 'c@example.com' has been deactivated", env.Message)
		assert.False(t, users.users[5].IsActive)
	}
	assert.Len(t, users.setCalls, 2)
	require.Len(t, pub.events, 2)
	assert.Equal(t, queue.UserDeactivated, pub.events[0].Type)
}

func TestActivateUser(t *testing.T) {
	users := newFakeUsers(model.UserRow{UserID: 5, UserName: ptr("carl"), Email: ptr("c@example.com")})
	e := userEcho(users, &fakePublisher{})

	rec, env := do(t, e, http.MethodPatch, "/users/activate?id=5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User with username 'carl' and email 'c@example.com' has been activated", env.Message)
	assert.True(t, users.users[5].IsActive)
	assert.Equal(t, []setActiveCall{{id: 5, active: true}}, users.setCalls)
}

func TestToggleActive_UnknownUser(t *testing.T) {
	for _, path := range []string{"/users/activate", "/users/deactivate"} {
		users := newFakeUsers()
		pub := &fakePublisher{}
		e := userEcho(users, pub)

		rec, env := do(t, e, http.MethodPatch, path+"?id=999", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "User not found", env.Message)
		assert.Empty(t, users.setCalls, "no update for an unknown id")
		assert.Empty(t, pub.events)
	}
}

func TestToggleActive_BadID(t *testing.T) {
	cases := map[string]string{
		"":        "User id is required",
		"?id=":    "User id is required",
		"?id=abc": "User id must be a positive integer",
		"?id=-3":  "User id must be a positive integer",
		"?id=0":   "User id must be a positive integer",
	}
	for query, msg := range cases {
		users := newFakeUsers()
		e := userEcho(users, &fakePublisher{})

		rec, env := do(t, e, http.MethodPatch, "/users/deactivate"+query, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Equal(t, msg, env.Message, query)
		assert.Empty(t, users.setCalls)
	}
}

func TestToggleActive_StoreFailure(t *testing.T) {
	users := newFakeUsers()
	users.err = errStore
	e := userEcho(users, &fakePublisher{})

	rec, env := do(t, e, http.MethodPatch, "/users/activate?id=1", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database error", env.Message)
	assert.Empty(t, users.setCalls)
}

func TestToggleActive_UpdateFailure(t *testing.T) {
	users := newFakeUsers(model.UserRow{UserID: 5, UserName: ptr("carl"), Email: ptr("c@example.com")})
	users.setErr = errStore
	pub := &fakePublisher{}
	e := userEcho(users, pub)

	rec, env := do(t, e, http.MethodPatch, "/users/activate?id=5", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Database error", env.Message)
	assert.Len(t, users.setCalls, 1)
	assert.False(t, users.users[5].IsActive)
	assert.Empty(t, pub.events, "no event for a failed update")
}

func TestToggleActive_NullContact(t *testing.T) {
	users := newFakeUsers(model.UserRow{UserID: 8, IsActive: true})
	pub := &fakePublisher{}
	e := userEcho(users, pub)

	rec, env := do(t, e, http.MethodPatch, "/users/deactivate?id=8", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User with username '' and email '' has been deactivated", env.Message)
	require.Len(t, pub.events, 1)
	assert.Empty(t, pub.events[0].UserName)
}

func TestListUsers_NullColumns(t *testing.T) {
	e := userEcho(newFakeUsers(model.UserRow{UserID: 3, IsActive: true}), &fakePublisher{})

	rec, env := do(t, e, http.MethodGet, "/users", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"user_id":3,"user_name":null,"email":null,"is_active":true}]`, string(env.Data))
}
