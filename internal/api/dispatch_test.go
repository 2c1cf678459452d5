package api_test

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoring-api/internal/api"
	"scoring-api/internal/common/apierrors"
	"scoring-api/internal/common/config"
	"scoring-api/internal/common/logger"
	"scoring-api/internal/methods/clientsinterests"
	"scoring-api/internal/methods/onlinescore"
	"scoring-api/internal/scoring"
	"scoring-api/internal/store"
)

// ==========================
// Test Helper Functions
// ==========================

var testAuth = config.AuthConfig{
	Salt:       "secret-salt",
	AdminSalt:  "admin-salt",
	AdminLogin: "admin",
}

type dispatchFixture struct {
	dispatcher *api.Dispatcher
	store      *store.Store
	redis      *miniredis.Miniredis
}

func newFixture(t *testing.T) *dispatchFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	backend := store.NewRedisBackend(config.RedisConfig{
		Address:      mr.Addr(),
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	t.Cleanup(func() { backend.Close() })

	log := logger.NewTestLogger(t)
	st := store.New(backend, store.RetryPolicy{Attempts: 3}, log)
	require.NoError(t, st.Connect(context.Background()))

	dispatcher := api.NewDispatcher(api.NewAuthenticator(testAuth), log)
	dispatcher.Register(onlinescore.MethodName, onlinescore.Schema(), onlinescore.NewHandler(st, log))
	dispatcher.Register(clientsinterests.MethodName, clientsinterests.Schema(), clientsinterests.NewHandler(st, log))

	return &dispatchFixture{dispatcher: dispatcher, store: st, redis: mr}
}

func sha512hex(message string) string {
	sum := sha512.Sum512([]byte(message))
	return hex.EncodeToString(sum[:])
}

func userToken(account, login string) string {
	return sha512hex(account + login + testAuth.Salt)
}

func adminToken() string {
	return sha512hex(time.Now().UTC().Format("2006010215") + testAuth.AdminSalt)
}

func scoreRequest(arguments map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"account":   "horns&hoofs",
		"login":     "h&f",
		"token":     userToken("horns&hoofs", "h&f"),
		"method":    "online_score",
		"arguments": arguments,
	}
}

func interestsRequest(arguments map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"account":   "horns&hoofs",
		"login":     "h&f",
		"token":     userToken("horns&hoofs", "h&f"),
		"method":    "clients_interests",
		"arguments": arguments,
	}
}

func scoreArguments() map[string]interface{} {
	return map[string]interface{}{
		"phone": "79175002040",
		"email": "test@test.com",
	}
}

// ==========================
// Envelope / Auth Failures
// ==========================

func TestDispatch_EmptyRequest(t *testing.T) {
	f := newFixture(t)

	payload, code := f.dispatcher.Dispatch(context.Background(), map[string]interface{}{}, api.DiagContext{})
	assert.Equal(t, apierrors.StatusInvalidRequest, code)
	errs, ok := payload.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, errs, "login")
	assert.Contains(t, errs, "token")
	assert.Contains(t, errs, "method")
	assert.Contains(t, errs, "arguments")
}

func TestDispatch_BadAuth(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "garbage token", body: map[string]interface{}{
			"account": "horns&hoofs", "login": "h&f", "token": "sdd",
			"method": "online_score", "arguments": scoreArguments(),
		}},
		{name: "empty token", body: map[string]interface{}{
			"account": "horns&hoofs", "login": "h&f", "token": "",
			"method": "online_score", "arguments": scoreArguments(),
		}},
		{name: "stale admin token", body: map[string]interface{}{
			"login": "admin", "token": sha512hex("1970010100" + testAuth.AdminSalt),
			"method": "online_score", "arguments": scoreArguments(),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, code := f.dispatcher.Dispatch(context.Background(), tt.body, api.DiagContext{})
			assert.Equal(t, apierrors.StatusForbidden, code)
			assert.Equal(t, "Forbidden", payload, "auth failures stay opaque")
		})
	}
}

func TestDispatch_UnknownMethod(t *testing.T) {
	f := newFixture(t)

	body := scoreRequest(scoreArguments())
	body["method"] = "online_scoring"

	payload, code := f.dispatcher.Dispatch(context.Background(), body, api.DiagContext{})
	assert.Equal(t, apierrors.StatusInvalidRequest, code)
	errs, ok := payload.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, errs, "method")
}

// ==========================
// online_score
// ==========================

func TestDispatch_OnlineScore(t *testing.T) {
	f := newFixture(t)
	diag := api.DiagContext{}

	payload, code := f.dispatcher.Dispatch(context.Background(), scoreRequest(scoreArguments()), diag)
	require.Equal(t, apierrors.StatusOK, code)

	response, ok := payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3.0, response["score"])
	assert.ElementsMatch(t, []string{"email", "phone"}, diag["has"])
}

func TestDispatch_OnlineScore_AdminShortCircuit(t *testing.T) {
	f := newFixture(t)
	f.redis.Close() // the admin path must not touch the store

	body := map[string]interface{}{
		"login":     "admin",
		"token":     adminToken(),
		"method":    "online_score",
		"arguments": scoreArguments(),
	}

	payload, code := f.dispatcher.Dispatch(context.Background(), body, api.DiagContext{})
	require.Equal(t, apierrors.StatusOK, code)
	response := payload.(map[string]interface{})
	assert.Equal(t, 42.0, response["score"])
}

func TestDispatch_OnlineScore_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		arguments map[string]interface{}
		wantField string
	}{
		{name: "bad phone", arguments: map[string]interface{}{
			"phone": "89175002040", "email": "test@test.com",
		}, wantField: "phone"},
		{name: "bad email", arguments: map[string]interface{}{
			"phone": "79175002040", "email": "test.test.com",
		}, wantField: "email"},
		{name: "bad gender", arguments: map[string]interface{}{
			"phone": "79175002040", "email": "test@test.com", "gender": 5.0,
		}, wantField: "gender"},
		{name: "no qualifying pair", arguments: map[string]interface{}{
			"phone": "79175002040", "first_name": "first",
		}, wantField: "arguments"},
		{name: "empty arguments", arguments: map[string]interface{}{}, wantField: "arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, code := f.dispatcher.Dispatch(context.Background(), scoreRequest(tt.arguments), api.DiagContext{})
			assert.Equal(t, apierrors.StatusInvalidRequest, code)
			errs, ok := payload.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

// ==========================
// clients_interests
// ==========================

func TestDispatch_ClientsInterests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, scoring.SeedInterests(ctx, f.store, 0, 10))
	diag := api.DiagContext{}

	body := interestsRequest(map[string]interface{}{
		"client_ids": []interface{}{1.0, 2.0, 3.0},
		"date":       "19.07.2017",
	})

	payload, code := f.dispatcher.Dispatch(ctx, body, diag)
	require.Equal(t, apierrors.StatusOK, code)
	assert.Equal(t, 3, diag["nclients"])

	response, ok := payload.(map[string]interface{})
	require.True(t, ok)
	require.Len(t, response, 3)
	for _, id := range []string{"1", "2", "3"} {
		interests, ok := response[id].([]string)
		require.True(t, ok, "missing client %s", id)
		assert.NotEmpty(t, interests)
	}
}

func TestDispatch_ClientsInterests_InvalidArguments(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		arguments map[string]interface{}
		wantField string
	}{
		{name: "missing ids", arguments: map[string]interface{}{"date": "19.07.2017"}, wantField: "client_ids"},
		{name: "empty ids", arguments: map[string]interface{}{"client_ids": []interface{}{}}, wantField: "client_ids"},
		{name: "negative id", arguments: map[string]interface{}{"client_ids": []interface{}{1.0, -2.0}}, wantField: "client_ids"},
		{name: "string ids", arguments: map[string]interface{}{"client_ids": "1,2"}, wantField: "client_ids"},
		{name: "bad date", arguments: map[string]interface{}{
			"client_ids": []interface{}{1.0}, "date": "XXX",
		}, wantField: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, code := f.dispatcher.Dispatch(context.Background(), interestsRequest(tt.arguments), api.DiagContext{})
			assert.Equal(t, apierrors.StatusInvalidRequest, code)
			errs, ok := payload.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestDispatch_HandlerFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.store.Set(ctx, "i:1", "corrupt", 0))

	body := interestsRequest(map[string]interface{}{"client_ids": []interface{}{1.0}})

	payload, code := f.dispatcher.Dispatch(ctx, body, api.DiagContext{})
	assert.Equal(t, apierrors.StatusInternalError, code)
	assert.Nil(t, payload, "internal detail must not leak")
}
