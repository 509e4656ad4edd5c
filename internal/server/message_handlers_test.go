package server

import (
	"net/http"
	"testing"

	"hotorflop/internal/models"
	"hotorflop/internal/service"
	"hotorflop/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageFlow(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)
	alice := testutil.CreateUser(t, env.db, "alice")
	bob := testutil.CreateUser(t, env.db, "bob")
	toBob := "/api/conversations/" + itoa(bob.ID)
	toAlice := "/api/conversations/" + itoa(alice.ID)

	status, _ := env.do(http.MethodPost, toBob+"/messages", alice.ID, fiber.Map{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, status, "strangers cannot message each other")

	testutil.Follow(t, env.db, bob.ID, alice.ID, false)

	status, body := env.do(http.MethodPost, toBob+"/messages", alice.ID, fiber.Map{"content": "hot or flop?"})
	require.Equal(t, http.StatusCreated, status, string(body))
	first := decode[models.Message](t, body)
	assert.Equal(t, bob.ID, first.ReceiverID)

	status, body = env.do(http.MethodPost, toAlice+"/messages", bob.ID, fiber.Map{
		"content":     "hot",
		"reply_to_id": first.ID,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = env.do(http.MethodPost, toBob+"/messages", alice.ID, fiber.Map{"content": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(http.MethodGet, "/api/messages/unread", bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), decode[map[string]any](t, body)["unread"])

	status, body = env.do(http.MethodGet, "/api/conversations", bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	convs := decode[[]models.Conversation](t, body)
	require.Len(t, convs, 1)
	assert.Equal(t, alice.ID, convs[0].User.ID)
	assert.Equal(t, "hot", convs[0].LastMessage)

	status, body = env.do(http.MethodGet, toAlice+"/messages", bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[service.MessagePage](t, body)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, first.ID, page.Messages[0].ID)
	assert.Nil(t, page.NextCursor)

	status, body = env.do(http.MethodPut, toAlice+"/read", bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), decode[map[string]any](t, body)["marked"])

	status, body = env.do(http.MethodGet, toAlice+"/search?q=FLOP", bob.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Message](t, body), 1)

	msgPath := "/api/messages/" + itoa(first.ID)
	status, _ = env.do(http.MethodPut, msgPath, bob.ID, fiber.Map{"content": "edited"})
	assert.Equal(t, http.StatusForbidden, status)
	status, body = env.do(http.MethodPut, msgPath, alice.ID, fiber.Map{"content": "edited"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "edited", decode[models.Message](t, body).Content)

	status, _ = env.do(http.MethodDelete, msgPath, alice.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(http.MethodDelete, msgPath, alice.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMessageSocket(t *testing.T) {
	env := newTestEnv(t, "", nil, nil)
	alice := testutil.CreateUser(t, env.db, "alice")

	status, _ := env.do(http.MethodGet, "/ws/messages", alice.ID, nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)

	status, _ = env.do(http.MethodPost, "/api/messages/ws-ticket", alice.ID, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status, "tickets need redis")
}

func TestIssueWSTicket(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnv(t, "", rdb, nil)
	alice := testutil.CreateUser(t, env.db, "alice")

	status, body := env.do(http.MethodPost, "/api/messages/ws-ticket", alice.ID, nil)
	require.Equal(t, http.StatusCreated, status, string(body))
	resp := decode[map[string]any](t, body)
	ticket, _ := resp["ticket"].(string)
	require.NotEmpty(t, ticket)
	assert.Equal(t, float64(30), resp["expires_in"])

	owner, err := mr.Get("ws_ticket:" + ticket)
	require.NoError(t, err)
	assert.Equal(t, itoa(alice.ID), owner)
}
