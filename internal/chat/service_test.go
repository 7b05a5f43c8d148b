package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortkat/internal/kvstore"
	"shortkat/internal/models"
	"shortkat/internal/repositories"
)

func newTestService(t *testing.T, userIDs ...string) *KVService {
	t.Helper()
	store := kvstore.NewMemoryStore()
	locks := kvstore.NewKeyedMutex()
	users := repositories.NewUserRepo(store, locks)
	for _, id := range userIDs {
		require.NoError(t, users.CreateProfile(context.Background(), models.Profile{
			ID:       id,
			Username: id,
		}))
	}
	return NewService(store, users, locks)
}

func fixedClock(day string) func() time.Time {
	return func() time.Time {
		ts, _ := time.Parse("2006-01-02", day)
		return ts
	}
}

func TestSendMessageFirstEver(t *testing.T) {
	svc := newTestService(t, "alice", "bob").WithClock(fixedClock("2024-03-02"))

	msg, current, err := svc.SendMessage(context.Background(), "alice", "bob", " hi ")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "alice:bob", msg.ChatID)
	assert.Equal(t, "hi", msg.Text, "text is trimmed")
	assert.Equal(t, 1, current.Count)
	assert.Equal(t, "2024-03-02", current.LastDate)
	assert.ElementsMatch(t, []string{"alice", "bob"}, current.Participants)
}

func TestSendMessageSameDayKeepsCount(t *testing.T) {
	svc := newTestService(t, "alice", "bob").WithClock(fixedClock("2024-03-02"))
	ctx := context.Background()

	_, _, err := svc.SendMessage(ctx, "alice", "bob", "one")
	require.NoError(t, err)
	_, current, err := svc.SendMessage(ctx, "bob", "alice", "two")
	require.NoError(t, err)

	assert.Equal(t, 1, current.Count)

	messages, _, err := svc.ListMessages(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, messages, 2)
}

func TestSendMessageConsecutiveDaysIncrement(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	for i, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		svc.WithClock(fixedClock(day))
		_, current, err := svc.SendMessage(ctx, "alice", "bob", "hello")
		require.NoError(t, err)
		assert.Equal(t, i+1, current.Count)
		assert.Equal(t, day, current.LastDate)
	}
}

func TestSendMessageGapResets(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	svc.WithClock(fixedClock("2024-03-01"))
	_, _, err := svc.SendMessage(ctx, "alice", "bob", "hello")
	require.NoError(t, err)
	svc.WithClock(fixedClock("2024-03-02"))
	_, current, err := svc.SendMessage(ctx, "alice", "bob", "hello")
	require.NoError(t, err)
	require.Equal(t, 2, current.Count)

	svc.WithClock(fixedClock("2024-03-05"))
	_, current, err = svc.SendMessage(ctx, "alice", "bob", "back again")
	require.NoError(t, err)
	assert.Equal(t, 1, current.Count)
	assert.Equal(t, "2024-03-05", current.LastDate)
}

func TestSendMessageToSelfRejectedWithoutWrites(t *testing.T) {
	svc := newTestService(t, "alice").WithClock(fixedClock("2024-03-02"))
	ctx := context.Background()

	_, _, err := svc.SendMessage(ctx, "alice", "alice", "note to self")
	require.ErrorIs(t, err, ErrSelfMessage)

	chats, err := svc.ListChats(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, chats, "rejected send must not create a chat")
}

func TestSendMessageEmptyTextRejected(t *testing.T) {
	svc := newTestService(t, "alice", "bob")

	_, _, err := svc.SendMessage(context.Background(), "alice", "bob", "   ")
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	svc := newTestService(t, "alice")

	_, _, err := svc.SendMessage(context.Background(), "alice", "ghost", "anyone there")
	require.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestSendMessageConcurrentSendsBothPersist(t *testing.T) {
	svc := newTestService(t, "alice", "bob").WithClock(fixedClock("2024-03-02"))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		sender, recipient := "alice", "bob"
		if i == 1 {
			sender, recipient = "bob", "alice"
		}
		go func() {
			defer wg.Done()
			_, _, err := svc.SendMessage(ctx, sender, recipient, "racing")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	messages, current, err := svc.ListMessages(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Len(t, messages, 2, "neither send may overwrite the other")
	assert.Equal(t, 1, current.Count)
}

func TestListMessagesEmptyChat(t *testing.T) {
	svc := newTestService(t, "alice", "bob")

	messages, current, err := svc.ListMessages(context.Background(), "alice", "bob")
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, 0, current.Count)
	assert.Empty(t, current.LastDate)
}

func TestListMessagesChronologicalOrder(t *testing.T) {
	svc := newTestService(t, "alice", "bob")
	ctx := context.Background()

	for i, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		svc.WithClock(fixedClock(day))
		_, _, err := svc.SendMessage(ctx, "alice", "bob", []string{"first", "second", "third"}[i])
		require.NoError(t, err)
	}

	messages, _, err := svc.ListMessages(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Text)
	assert.Equal(t, "third", messages[2].Text)
}

func TestListChatsSortedByLastActivity(t *testing.T) {
	svc := newTestService(t, "alice", "bob", "carol")
	ctx := context.Background()

	svc.WithClock(fixedClock("2024-03-01"))
	_, _, err := svc.SendMessage(ctx, "alice", "bob", "old chat")
	require.NoError(t, err)
	svc.WithClock(fixedClock("2024-03-02"))
	_, _, err = svc.SendMessage(ctx, "alice", "carol", "new chat")
	require.NoError(t, err)

	chats, err := svc.ListChats(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "new chat", chats[0].LastMessage.Text)
	assert.Equal(t, "old chat", chats[1].LastMessage.Text)
	require.NotNil(t, chats[0].OtherUser)
	assert.Equal(t, "carol", chats[0].OtherUser.ID)
	assert.Equal(t, 1, chats[0].MessagesCount)
}

func TestListChatsExcludesForeignChats(t *testing.T) {
	svc := newTestService(t, "alice", "bob", "carol")
	ctx := context.Background()

	svc.WithClock(fixedClock("2024-03-01"))
	_, _, err := svc.SendMessage(ctx, "bob", "carol", "private")
	require.NoError(t, err)

	chats, err := svc.ListChats(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, chats)
}
