package client

import (
	"sync"

	"github.com/daechang/placetalk/internal/domain"
)

// AlertMessage is one unread message together with the routing metadata of
// the room it belongs to, so alerts can be grouped for display without
// another lookup.
type AlertMessage struct {
	domain.Message
	ChatID       string
	RoadAddress  string
	JibunAddress string
}

// wellFormed reports whether the entry has everything the notification view
// needs. Malformed entries are excluded from grouping, silently: the display
// layer is lenient where the write path is strict.
func (a AlertMessage) wellFormed() bool {
	return a.SenderEmail != "" && a.Text != "" && a.SendAt != "" && a.ChatID != ""
}

// AlertGroupKey identifies one notification group: the room's address
// metadata plus its chatId.
type AlertGroupKey struct {
	RoadAddress  string
	JibunAddress string
	ChatID       string
}

// AlertGroup is the display view of one room's unread messages.
type AlertGroup struct {
	Key      AlertGroupKey
	Messages []AlertMessage
}

// AlertAggregator is the cross-room unread state for one viewer,
// independent of which room is currently open. Messages the viewer sent
// themselves are never recorded.
type AlertAggregator struct {
	viewer string

	mu     sync.Mutex
	unread []AlertMessage
	count  int
}

// NewAlertAggregator creates an aggregator for the given viewer identity.
func NewAlertAggregator(viewerEmail string) *AlertAggregator {
	return &AlertAggregator{viewer: viewerEmail}
}

// Record adds an unread entry unless the viewer is the sender. It reports
// whether the entry was recorded.
func (a *AlertAggregator) Record(msg AlertMessage) bool {
	if msg.SenderEmail == a.viewer {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.unread = append(a.unread, msg)
	a.count++
	return true
}

// UnreadCount returns the number of unacknowledged messages.
func (a *AlertAggregator) UnreadCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Groups partitions the unread list by room for notification display,
// preserving arrival order both across groups (first-seen order) and within
// each group. Entries missing required fields are skipped.
func (a *AlertAggregator) Groups() []AlertGroup {
	a.mu.Lock()
	defer a.mu.Unlock()

	var order []AlertGroupKey
	byKey := make(map[AlertGroupKey]*AlertGroup)
	for _, msg := range a.unread {
		if !msg.wellFormed() {
			continue
		}
		key := AlertGroupKey{
			RoadAddress:  msg.RoadAddress,
			JibunAddress: msg.JibunAddress,
			ChatID:       msg.ChatID,
		}
		group, ok := byKey[key]
		if !ok {
			group = &AlertGroup{Key: key}
			byKey[key] = group
			order = append(order, key)
		}
		group.Messages = append(group.Messages, msg)
	}

	groups := make([]AlertGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups
}

// Reset clears the unread list and count, the acknowledged-by-viewing
// semantics of opening the notification list. Room caches are unaffected.
func (a *AlertAggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unread = nil
	a.count = 0
}
