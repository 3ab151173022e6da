package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Send(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	coach := f.register(t, testutil.TestConfig().CoachEmail, domain.RoleCoach)
	premium := f.register(t, "premium@example.com", domain.RolePremium)
	other := f.register(t, "other@example.com", domain.RolePremium)
	basic := f.register(t, "basic@example.com", domain.RoleUser)

	tests := []struct {
		name       string
		sender     *domain.User
		receiverID string
		content    string
		wantErr    error
	}{
		{"coach to premium", coach, premium.UserID, "hola", nil},
		{"coach to basic user", coach, basic.UserID, "hola", nil},
		{"coach to unknown", coach, "user_missing0000", "hola", domain.ErrUserNotFound},
		{"premium to coach", premium, coach.UserID, "gracias", nil},
		{"premium to premium", premium, other.UserID, "hey", domain.ErrReceiverMustBeCoach},
		{"premium to unknown", premium, "user_missing0000", "hey", domain.ErrReceiverMustBeCoach},
		{"basic to coach", basic, coach.UserID, "hola", domain.ErrPremiumToSend},
		{"basic to premium", basic, premium.UserID, "hola", domain.ErrPremiumToSend},
		{"basic with empty content", basic, coach.UserID, "  ", domain.ErrPremiumToSend},
		{"blank content", premium, coach.UserID, " \n ", domain.ErrEmptyMessage},
		{"too long", premium, coach.UserID, strings.Repeat("ñ", service.MaxMessageLength+1), domain.ErrMessageTooLong},
		{"at limit", premium, coach.UserID, strings.Repeat("ñ", service.MaxMessageLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := f.services.Message.Send(ctx, tt.sender, tt.receiverID, tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.CodeOf(tt.wantErr), domain.CodeOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.sender.UserID, msg.SenderID)
			assert.Equal(t, tt.receiverID, msg.ReceiverID)
			assert.Equal(t, strings.TrimSpace(tt.content), msg.Content)
			assert.False(t, msg.Read)
			assert.NotEmpty(t, msg.ID)
		})
	}
}

func TestMessageService_SendNotifiesReceiver(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	coach := f.register(t, testutil.TestConfig().CoachEmail, domain.RoleCoach)
	premium := f.register(t, "premium@example.com", domain.RolePremium)

	msg, err := f.services.Message.Send(ctx, premium, coach.UserID, "  necesito ayuda ")
	require.NoError(t, err)

	unread, err := f.services.Message.UnreadCount(ctx, coach.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, coach.UserID, events[0].UserID)
	assert.Equal(t, domain.EventDirectMessage, events[0].Type)
	assert.Equal(t, msg, events[0].Payload)
}

func TestMessageService_GetConversation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	coach := f.register(t, testutil.TestConfig().CoachEmail, domain.RoleCoach)
	client := f.register(t, "client@example.com", domain.RolePremium)

	for _, send := range []struct {
		from    *domain.User
		to      string
		content string
	}{
		{client, coach.UserID, "uno"},
		{coach, client.UserID, "dos"},
		{client, coach.UserID, "tres"},
	} {
		_, err := f.services.Message.Send(ctx, send.from, send.to, send.content)
		require.NoError(t, err)
	}

	coachUnread := func() int64 {
		n, err := f.services.Message.UnreadCount(ctx, coach.UserID)
		require.NoError(t, err)
		return n
	}
	clientUnread := func() int64 {
		n, err := f.services.Message.UnreadCount(ctx, client.UserID)
		require.NoError(t, err)
		return n
	}
	require.Equal(t, int64(2), coachUnread())
	require.Equal(t, int64(1), clientUnread())

	msgs, err := f.services.Message.GetConversation(ctx, coach, client.UserID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "uno", msgs[0].Content)
	assert.Equal(t, "dos", msgs[1].Content)
	assert.Equal(t, "tres", msgs[2].Content)
	assert.False(t, msgs[0].Read, "snapshot is taken before acknowledgement")

	// only the counterpart's messages are acknowledged
	assert.Zero(t, coachUnread())
	assert.Equal(t, int64(1), clientUnread())

	events := f.notifier.Events()
	last := events[len(events)-1]
	assert.Equal(t, domain.EventMessagesRead, last.Type)
	assert.Equal(t, client.UserID, last.UserID)
	assert.Equal(t, domain.MessagesReadPayload{ReaderID: coach.UserID, Count: 2}, last.Payload)

	// a second fetch changes nothing and emits nothing
	eventCount := len(events)
	msgs, err = f.services.Message.GetConversation(ctx, coach, client.UserID, 0)
	require.NoError(t, err)
	assert.True(t, msgs[0].Read)
	assert.Zero(t, coachUnread())
	assert.Equal(t, int64(1), clientUnread())
	assert.Len(t, f.notifier.Events(), eventCount)

	first, err := f.services.Message.GetConversation(ctx, client, coach.UserID, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "uno", first[0].Content)
	assert.Equal(t, "dos", first[1].Content)
	assert.Zero(t, clientUnread())
}

func TestMessageService_GetConversationConcurrentReads(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	coach := f.register(t, testutil.TestConfig().CoachEmail, domain.RoleCoach)
	client := f.register(t, "client@example.com", domain.RolePremium)

	for i := 0; i < 5; i++ {
		_, err := f.services.Message.Send(ctx, client, coach.UserID, "mensaje")
		require.NoError(t, err)
	}

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := f.services.Message.GetConversation(ctx, coach, client.UserID, 0)
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}

	n, err := f.services.Message.UnreadCount(ctx, coach.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)

	var acknowledged int64
	for _, e := range f.notifier.Events() {
		if e.Type == domain.EventMessagesRead {
			acknowledged += e.Payload.(domain.MessagesReadPayload).Count
		}
	}
	assert.Equal(t, int64(5), acknowledged, "each message is acknowledged exactly once")
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 50},
		{-3, 50},
		{10, 10},
		{200, 200},
		{500, 200},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, service.ClampLimit(tt.in, 50, 200))
	}
}
