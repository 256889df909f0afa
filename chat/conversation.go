package chat

import (
	"fmt"
	"strconv"
	"strings"
)

// ConversationID derives the canonical conversation id for a pair of users.
// The two ids are ordered numerically ascending and joined with "-", so
// ConversationID(a, b) == ConversationID(b, a) for all a, b. Every room name
// and every persisted message tag must come from this function; comparing ids
// as strings would order "10" before "9" and split a conversation in two.
func ConversationID(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

// ParseConversationID splits a canonical conversation id back into its two
// participant ids (low, high).
func ParseConversationID(id string) (uint, uint, error) {
	low, high, ok := strings.Cut(id, "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed conversation id %q", id)
	}
	a, err := strconv.ParseUint(low, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed conversation id %q", id)
	}
	b, err := strconv.ParseUint(high, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed conversation id %q", id)
	}
	if a >= b {
		return 0, 0, fmt.Errorf("conversation id %q is not canonical", id)
	}
	return uint(a), uint(b), nil
}

// Counterpart returns the participant of the conversation other than self,
// or an error if self is not a participant at all.
func Counterpart(conversationID string, self uint) (uint, error) {
	a, b, err := ParseConversationID(conversationID)
	if err != nil {
		return 0, err
	}
	switch self {
	case a:
		return b, nil
	case b:
		return a, nil
	}
	return 0, fmt.Errorf("user %d is not a participant of conversation %s", self, conversationID)
}

// PersonalRoom names the room every event addressed to a user is delivered
// to, regardless of which conversation it concerns.
func PersonalRoom(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// ConversationRoom names the broadcast room for a canonical conversation id.
func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}
