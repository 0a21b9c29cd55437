package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/service"
)

func TestSendMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, entity.RoleRequester)
	bob := env.registerUser(t, entity.RoleProvider)

	_, err := env.services.Message.SendMessage(ctx, &entity.SendMessageInput{
		SenderId: alice.Id, ReceiverId: bob.Id, Content: "   ",
	})
	assert.ErrorIs(t, err, service.ErrMissingFields)

	_, err = env.services.Message.SendMessage(ctx, &entity.SendMessageInput{
		SenderId: alice.Id, ReceiverId: alice.Id, Content: "note to self",
	})
	assert.ErrorIs(t, err, service.ErrSelfMessage)

	_, err = env.services.Message.SendMessage(ctx, &entity.SendMessageInput{
		SenderId: alice.Id, ReceiverId: uuid.NewString(), Content: "hello?",
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestChatThreadsGroupAndCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, entity.RoleRequester)
	bob := env.registerUser(t, entity.RoleProvider)
	carol := env.registerUser(t, entity.RoleProvider)

	for _, content := range []string{"hi bob", "are you free?"} {
		_, err := env.services.Message.SendMessage(ctx, &entity.SendMessageInput{
			SenderId: alice.Id, ReceiverId: bob.Id, Content: content,
		})
		require.NoError(t, err)
	}
	_, err := env.services.Message.SendMessage(ctx, &entity.SendMessageInput{
		SenderId: carol.Id, ReceiverId: bob.Id, Content: "quote attached",
	})
	require.NoError(t, err)

	threads, err := env.services.Message.GetChatThreads(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, threads, 2)

	byCounterparty := make(map[string]entity.ThreadView, len(threads))
	for _, thread := range threads {
		byCounterparty[thread.CounterpartyId.String()] = thread
	}
	assert.Equal(t, 2, byCounterparty[alice.Id].UnreadCount)
	assert.Equal(t, "are you free?", byCounterparty[alice.Id].LastMessage.Content)
	assert.Equal(t, 1, byCounterparty[carol.Id].UnreadCount)

	// the sender sees the thread without unread messages
	aliceThreads, err := env.services.Message.GetChatThreads(ctx, alice.Id)
	require.NoError(t, err)
	require.Len(t, aliceThreads, 1)
	assert.Equal(t, 0, aliceThreads[0].UnreadCount)
}

func TestMarkMessageRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.registerUser(t, entity.RoleRequester)
	bob := env.registerUser(t, entity.RoleProvider)

	sent, err := env.services.Message.SendMessage(ctx, &entity.SendMessageInput{
		SenderId: alice.Id, ReceiverId: bob.Id, Content: "ping",
	})
	require.NoError(t, err)

	_, err = env.services.Message.MarkMessageRead(ctx, sent.Id, alice.Id)
	assert.ErrorIs(t, err, service.ErrNotMessageReceiver)

	read, err := env.services.Message.MarkMessageRead(ctx, sent.Id, bob.Id)
	require.NoError(t, err)
	assert.True(t, read.Read)

	threads, err := env.services.Message.GetChatThreads(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 0, threads[0].UnreadCount)

	// marking again is a no-op and emits nothing
	before := env.feed.LastSeq()
	again, err := env.services.Message.MarkMessageRead(ctx, sent.Id, bob.Id)
	require.NoError(t, err)
	assert.True(t, again.Read)
	assert.Equal(t, before, env.feed.LastSeq())
}
