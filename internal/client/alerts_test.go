package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daechang/placetalk/internal/client"
)

func alertMsg(sender, text, sendAt, chatID, road, jibun string) client.AlertMessage {
	return client.AlertMessage{
		Message:      msg(sender, text, sendAt),
		ChatID:       chatID,
		RoadAddress:  road,
		JibunAddress: jibun,
	}
}

func TestAlertAggregator_RecordsOthersOnly(t *testing.T) {
	agg := client.NewAlertAggregator("me@x.com")

	assert.False(t, agg.Record(alertMsg("me@x.com", "my own", "t0", "room-1", "", "")))
	assert.True(t, agg.Record(alertMsg("them@x.com", "hello", "t1", "room-1", "", "")))
	assert.Equal(t, 1, agg.UnreadCount())
}

func TestAlertAggregator_GroupsByRoom(t *testing.T) {
	agg := client.NewAlertAggregator("me@x.com")

	require.True(t, agg.Record(alertMsg("a@x.com", "m1", "t1", "room-1", "1 Main St", "10-1")))
	require.True(t, agg.Record(alertMsg("b@x.com", "m2", "t2", "room-2", "2 Oak Ave", "20-2")))
	require.True(t, agg.Record(alertMsg("a@x.com", "m3", "t3", "room-1", "1 Main St", "10-1")))

	groups := agg.Groups()
	require.Len(t, groups, 2)

	// Groups keep first-seen order; messages keep arrival order.
	assert.Equal(t, "room-1", groups[0].Key.ChatID)
	assert.Equal(t, "1 Main St", groups[0].Key.RoadAddress)
	require.Len(t, groups[0].Messages, 2)
	assert.Equal(t, "m1", groups[0].Messages[0].Text)
	assert.Equal(t, "m3", groups[0].Messages[1].Text)

	assert.Equal(t, "room-2", groups[1].Key.ChatID)
	require.Len(t, groups[1].Messages, 1)
}

func TestAlertAggregator_ExcludesMalformed(t *testing.T) {
	agg := client.NewAlertAggregator("me@x.com")

	require.True(t, agg.Record(alertMsg("a@x.com", "ok", "t1", "room-1", "", "")))
	// Malformed entries count as unread but never reach the display view.
	require.True(t, agg.Record(alertMsg("a@x.com", "", "t2", "room-1", "", "")))
	require.True(t, agg.Record(alertMsg("a@x.com", "no room", "t3", "", "", "")))

	groups := agg.Groups()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Messages, 1)
	assert.Equal(t, "ok", groups[0].Messages[0].Text)
}

func TestAlertAggregator_Reset(t *testing.T) {
	agg := client.NewAlertAggregator("me@x.com")

	require.True(t, agg.Record(alertMsg("a@x.com", "m1", "t1", "room-1", "", "")))
	require.Equal(t, 1, agg.UnreadCount())

	agg.Reset()
	assert.Equal(t, 0, agg.UnreadCount())
	assert.Empty(t, agg.Groups())

	// The aggregator keeps working after a reset.
	assert.True(t, agg.Record(alertMsg("a@x.com", "m2", "t2", "room-1", "", "")))
	assert.Equal(t, 1, agg.UnreadCount())
}
