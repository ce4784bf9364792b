package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
)

// ---- fakes ----

type fakeMeta struct {
	data   map[string][]byte
	GetErr error
	SetErr error
}

func newFakeMeta() *fakeMeta {
	return &fakeMeta{data: map[string][]byte{}}
}

func (f *fakeMeta) Get(ctx context.Context, key string) ([]byte, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	return f.data[key], nil
}

func (f *fakeMeta) Set(ctx context.Context, key string, value []byte) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeMeta) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeMeta) List(ctx context.Context) (map[string][]byte, error) { return f.data, nil }
func (f *fakeMeta) Clear(ctx context.Context) error                     { f.data = map[string][]byte{}; return nil }

type fakeUsers struct {
	byPhone map[string]*models.User

	CreateCalls     int
	UpdateNameCalls int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byPhone: map[string]*models.User{}}
}

func (f *fakeUsers) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byPhone {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	f.CreateCalls++
	c := *user
	f.byPhone[user.Phone] = &c
	return user, nil
}

func (f *fakeUsers) UpdateName(ctx context.Context, id, name string) (*models.User, error) {
	f.UpdateNameCalls++
	for _, u := range f.byPhone {
		if u.ID == id {
			u.Name = name
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeSession struct {
	LoggedIn *models.User
	LoginErr error
}

func (f *fakeSession) Login(ctx context.Context, user *models.User) error {
	if f.LoginErr != nil {
		return f.LoginErr
	}
	f.LoggedIn = user
	return nil
}

// captureDeliverer records the last delivered code.
type captureDeliverer struct {
	Phone string
	Code  string
	Err   error
	Calls int
}

func (d *captureDeliverer) Deliver(ctx context.Context, phone, code string) error {
	d.Calls++
	if d.Err != nil {
		return d.Err
	}
	d.Phone = phone
	d.Code = code
	return nil
}

type env struct {
	flow    *Flow
	meta    *fakeMeta
	users   *fakeUsers
	session *fakeSession
	deliver *captureDeliverer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		meta:    newFakeMeta(),
		users:   newFakeUsers(),
		session: &fakeSession{},
		deliver: &captureDeliverer{},
	}
	e.flow = NewFlow(e.users, e.meta, e.session, e.deliver, &logging.NopLogger{}, 10*time.Minute, 5)
	return e
}

// ---- tests ----

func TestRequestCode_EmptyPhoneRejected(t *testing.T) {
	e := newEnv(t)

	err := e.flow.RequestCode(context.Background(), "  ", "")
	ve, ok := common.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "phone", ve.Field)
	require.Equal(t, StateAwaitingPhone, e.flow.State())
	require.Zero(t, e.deliver.Calls)
}

func TestRequestCode_MovesToAwaitingCodeAndPersistsHash(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", "alice"))

	require.Equal(t, StateAwaitingCode, e.flow.State())
	require.Equal(t, "0912", e.flow.Phone())
	require.Equal(t, "0912", e.deliver.Phone)
	require.Len(t, e.deliver.Code, 4)

	raw := e.meta.data["verification_0912"]
	require.NotEmpty(t, raw)
	require.NotContains(t, string(raw), e.deliver.Code, "plain code must not be persisted")
}

func TestRequestCode_DeliveryFailureStaysAwaitingPhone(t *testing.T) {
	e := newEnv(t)
	e.deliver.Err = errors.New("gateway down")

	err := e.flow.RequestCode(context.Background(), "0912", "")
	require.Error(t, err)
	require.Equal(t, StateAwaitingPhone, e.flow.State())
	require.Empty(t, e.meta.data["verification_0912"])
}

func TestSubmitCode_MatchCreatesUserAndLogsIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", "alice"))

	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.Equal(t, StateVerified, e.flow.State())
	require.Equal(t, "alice", user.Name)
	require.Equal(t, "0912", user.Phone)
	require.NotEmpty(t, user.ID)

	require.NotNil(t, e.session.LoggedIn)
	require.Equal(t, user.ID, e.session.LoggedIn.ID)
	require.Equal(t, 1, e.users.CreateCalls)

	// code is consumed
	require.Empty(t, e.meta.data["verification_0912"])
}

func TestSubmitCode_DefaultNameWhenNoneGiven(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))
	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.Equal(t, "user 0912", user.Name)
}

func TestSubmitCode_ExistingUserGetsNameUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.users.byPhone["0912"] = &models.User{ID: "u-1", Phone: "0912", Name: "old"}

	require.NoError(t, e.flow.RequestCode(ctx, "0912", "new"))
	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, "new", user.Name)
	require.Equal(t, 1, e.users.UpdateNameCalls)
	require.Zero(t, e.users.CreateCalls)
}

func TestSubmitCode_MismatchStaysAwaitingCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))

	_, err := e.flow.SubmitCode(ctx, "0000\x00") // can never match a 4-digit code
	require.ErrorIs(t, err, common.ErrVerificationMismatch)
	require.Equal(t, StateAwaitingCode, e.flow.State())
	require.Nil(t, e.session.LoggedIn)

	// the right code still works afterwards
	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, StateVerified, e.flow.State())
}

func TestSubmitCode_AttemptsExhaustedExpiresCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.flow.maxAttempts = 2

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))

	_, err := e.flow.SubmitCode(ctx, "bad-1")
	require.ErrorIs(t, err, common.ErrVerificationMismatch)

	_, err = e.flow.SubmitCode(ctx, "bad-2")
	require.ErrorIs(t, err, common.ErrCodeExpired)

	// the code record is gone, even the right code is refused now
	_, err = e.flow.SubmitCode(ctx, e.deliver.Code)
	require.ErrorIs(t, err, common.ErrNoOutstandingCode)
}

func TestSubmitCode_ExpiredCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))

	e.flow.nowF = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.ErrorIs(t, err, common.ErrCodeExpired)
	require.Equal(t, StateAwaitingCode, e.flow.State())
	require.Empty(t, e.meta.data["verification_0912"])
}

func TestSubmitCode_NoOutstandingCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))
	delete(e.meta.data, "verification_0912")

	_, err := e.flow.SubmitCode(ctx, "1234")
	require.ErrorIs(t, err, common.ErrNoOutstandingCode)
}

func TestSubmitCode_LoginFailureKeepsCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.session.LoginErr = errors.New("persist failed")

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))

	_, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.Error(t, err)
	require.Equal(t, StateAwaitingCode, e.flow.State())
	require.NotEmpty(t, e.meta.data["verification_0912"], "code must survive a failed login")

	// retry succeeds once login works again
	e.session.LoginErr = nil
	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestResendCode_ReplacesOutstandingCode(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))
	first := e.deliver.Code
	firstRaw := string(e.meta.data["verification_0912"])

	require.NoError(t, e.flow.ResendCode(ctx))
	require.Equal(t, 2, e.deliver.Calls)
	require.Equal(t, StateAwaitingCode, e.flow.State())

	// the new record replaced the old one
	if e.deliver.Code != first {
		require.NotEqual(t, firstRaw, string(e.meta.data["verification_0912"]))
	}

	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestEditPhone_ReturnsToAwaitingPhone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", "alice"))
	require.NoError(t, e.flow.EditPhone(ctx))

	require.Equal(t, StateAwaitingPhone, e.flow.State())
	require.Empty(t, e.flow.Phone())
	require.Empty(t, e.meta.data["verification_0912"])

	// a second number can be verified from scratch
	require.NoError(t, e.flow.RequestCode(ctx, "0935", "alice"))
	user, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)
	require.Equal(t, "0935", user.Phone)
}

func TestFlow_NotReusableAfterVerified(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.flow.RequestCode(ctx, "0912", ""))
	_, err := e.flow.SubmitCode(ctx, e.deliver.Code)
	require.NoError(t, err)

	require.Error(t, e.flow.RequestCode(ctx, "0935", ""))
	_, err = e.flow.SubmitCode(ctx, "1234")
	require.Error(t, err)
}
