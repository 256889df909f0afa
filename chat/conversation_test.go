package chat

import (
	"testing"
)

func TestConversationIDIsSymmetric(t *testing.T) {
	pairs := [][2]uint{
		{1, 2},
		{5, 9},
		{7, 8},
		{1000000, 3},
	}
	for _, p := range pairs {
		ab := ConversationID(p[0], p[1])
		ba := ConversationID(p[1], p[0])
		if ab != ba {
			t.Errorf("ConversationID(%d,%d)=%q but ConversationID(%d,%d)=%q", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestConversationIDIsStable(t *testing.T) {
	first := ConversationID(5, 9)
	for i := 0; i < 10; i++ {
		if got := ConversationID(5, 9); got != first {
			t.Fatalf("ConversationID(5,9) changed between calls: %q then %q", first, got)
		}
	}
	if first != "5-9" {
		t.Errorf("ConversationID(5,9) = %q, want %q", first, "5-9")
	}
}

// Ids must be ordered numerically: a lexical sort would put "10" before "9"
// and split one conversation into two ids.
func TestConversationIDOrdersNumerically(t *testing.T) {
	if got := ConversationID(10, 9); got != "9-10" {
		t.Errorf("ConversationID(10,9) = %q, want %q", got, "9-10")
	}
	if got := ConversationID(9, 10); got != "9-10" {
		t.Errorf("ConversationID(9,10) = %q, want %q", got, "9-10")
	}
	if got := ConversationID(100, 2); got != "2-100" {
		t.Errorf("ConversationID(100,2) = %q, want %q", got, "2-100")
	}
}

func TestParseConversationID(t *testing.T) {
	a, b, err := ParseConversationID("5-9")
	if err != nil {
		t.Fatalf("ParseConversationID(5-9) returned error: %v", err)
	}
	if a != 5 || b != 9 {
		t.Errorf("ParseConversationID(5-9) = (%d,%d), want (5,9)", a, b)
	}

	for _, bad := range []string{"", "5", "5-", "-9", "9-5", "5-5", "a-b", "5-9-12"} {
		if _, _, err := ParseConversationID(bad); err == nil {
			t.Errorf("ParseConversationID(%q) succeeded, want error", bad)
		}
	}
}

func TestCounterpart(t *testing.T) {
	if got, err := Counterpart("5-9", 5); err != nil || got != 9 {
		t.Errorf("Counterpart(5-9, 5) = (%d, %v), want (9, nil)", got, err)
	}
	if got, err := Counterpart("5-9", 9); err != nil || got != 5 {
		t.Errorf("Counterpart(5-9, 9) = (%d, %v), want (5, nil)", got, err)
	}
	if _, err := Counterpart("5-9", 7); err == nil {
		t.Error("Counterpart(5-9, 7) succeeded, want error for non-participant")
	}
}
