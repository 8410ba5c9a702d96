package client_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daechang/placetalk/internal/client"
	"github.com/daechang/placetalk/internal/domain"
)

func msg(sender, text, sendAt string) domain.Message {
	return domain.Message{SenderEmail: sender, Text: text, SendAt: sendAt}
}

func TestMessageCache_DuplicateSuppression(t *testing.T) {
	cache := client.NewMessageCache()

	m := msg("a@x.com", "hi", "2024-01-01T00:00:00Z")
	assert.True(t, cache.Add(m))
	assert.False(t, cache.Add(m), "the same identity must not be added twice")
	assert.Equal(t, 1, cache.Len())
}

func TestMessageCache_IdentityIsThreeFields(t *testing.T) {
	cache := client.NewMessageCache()

	base := msg("a@x.com", "hi", "2024-01-01T00:00:00Z")
	require.True(t, cache.Add(base))

	// Differing in any one field makes a different message.
	assert.True(t, cache.Add(msg("b@x.com", "hi", "2024-01-01T00:00:00Z")))
	assert.True(t, cache.Add(msg("a@x.com", "hi!", "2024-01-01T00:00:00Z")))
	assert.True(t, cache.Add(msg("a@x.com", "hi", "2024-01-01T00:00:01Z")))
	assert.Equal(t, 4, cache.Len())
}

func TestMessageCache_OptimisticEcho(t *testing.T) {
	// The sender sees its message once as the mutation response and once on
	// the subscription stream; exactly one entry survives.
	cache := client.NewMessageCache()

	sent := msg("me@x.com", "for sale?", "2024-01-01T12:00:00Z")
	assert.True(t, cache.Add(sent))  // optimistic local append
	assert.False(t, cache.Add(sent)) // subscription echo

	msgs := cache.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, sent, msgs[0])
}

func TestMessageCache_SeedThenStream(t *testing.T) {
	cache := client.NewMessageCache()

	var seed []domain.Message
	for i := 0; i < 3; i++ {
		seed = append(seed, msg("a@x.com", fmt.Sprintf("m%d", i), fmt.Sprintf("t%d", i)))
	}
	cache.Seed(seed)
	assert.Equal(t, 3, cache.Len())

	// A streamed event that was already in the fetch is dropped.
	assert.False(t, cache.Add(seed[2]))
	// A genuinely new event lands at the end.
	late := msg("b@x.com", "new", "t9")
	assert.True(t, cache.Add(late))

	msgs := cache.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, late, msgs[3], "arrival order is preserved")
}

func TestMessageCache_SeedReplaces(t *testing.T) {
	cache := client.NewMessageCache()
	cache.Seed([]domain.Message{msg("a@x.com", "old", "t0")})

	// Re-seeding after a reconnect replaces the view with the fresh fetch.
	cache.Seed([]domain.Message{
		msg("a@x.com", "old", "t0"),
		msg("b@x.com", "missed while offline", "t1"),
	})

	msgs := cache.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "missed while offline", msgs[1].Text)
}
