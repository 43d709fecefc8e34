package storefront

import (
	"context"
	"testing"
	"time"

	"github.com/example/essia-shop/internal/logging"
	"github.com/example/essia-shop/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitSession(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestSession_LoadingUntilWhoamiReturns(t *testing.T) {
	api := newFakeAPI()
	api.signIn(model.PublicAccount{ID: 1, Name: "Ada", Email: "ada@example.com"})
	gate := make(chan struct{})
	api.whoamiGate = gate

	s := NewSession(api, logging.Discard())
	s.Start(context.Background())
	assert.True(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())

	close(gate)
	waitSession(t, s)

	assert.False(t, s.IsLoading())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "ada@example.com", s.User().Email)
}

func TestSession_WhoamiFailureIsAnonymous(t *testing.T) {
	api := newFakeAPI()

	s := NewSession(api, logging.Discard())
	s.Start(context.Background())
	waitSession(t, s)

	assert.False(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestSession_LoginRegisterLogoutRefetch(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api, logging.Discard())
	s.Start(context.Background())
	waitSession(t, s)
	ctx := context.Background()

	var seen []*model.PublicAccount
	s.OnChange(func(u *model.PublicAccount) { seen = append(seen, u) })

	require.NoError(t, s.Register(ctx, "Ada", "ada@example.com", "pw"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, 2, api.whoamiCalls)

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())

	err := s.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", ErrorMessage(err))
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Login(ctx, "ada@example.com", "pw"))
	assert.Equal(t, "Ada", s.User().Name)
	assert.Equal(t, 4, api.whoamiCalls)

	require.Len(t, seen, 3)
	assert.NotNil(t, seen[0])
	assert.Nil(t, seen[1])
	assert.NotNil(t, seen[2])
}

func TestSession_UserIsCopy(t *testing.T) {
	api := newFakeAPI()
	api.signIn(model.PublicAccount{ID: 1, Name: "Ada", Email: "ada@example.com"})
	s := NewSession(api, logging.Discard())
	s.Start(context.Background())
	waitSession(t, s)

	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Ada", s.User().Name)
}

func TestSession_RefetchKeepsAuthenticated(t *testing.T) {
	api := newFakeAPI()
	api.signIn(model.PublicAccount{ID: 1, Name: "Ada", Email: "ada@example.com"})
	s := NewSession(api, logging.Discard())
	s.Start(context.Background())
	waitSession(t, s)

	gate := make(chan struct{})
	api.mu.Lock()
	api.whoamiGate = gate
	api.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RefetchUser(context.Background())
	}()

	// the refetch is parked on the gate; the known user stays visible
	assert.False(t, s.IsLoading())
	assert.True(t, s.IsAuthenticated())

	close(gate)
	<-done
	assert.True(t, s.IsAuthenticated())
}

func TestSession_ListenerSeesInitialWhoami(t *testing.T) {
	api := newFakeAPI()
	api.signIn(model.PublicAccount{ID: 1, Name: "Ada", Email: "ada@example.com"})
	s := NewSession(api, logging.Discard())

	seen := make(chan *model.PublicAccount, 1)
	s.OnChange(func(u *model.PublicAccount) { seen <- u })
	s.Start(context.Background())
	s.Start(context.Background())
	waitSession(t, s)

	select {
	case u := <-seen:
		require.NotNil(t, u)
		assert.Equal(t, "ada@example.com", u.Email)
	default:
		t.Fatal("listener missed the initial whoami")
	}
	assert.Equal(t, 1, api.whoamiCalls)
}
