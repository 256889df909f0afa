package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/platewise/chefchat/chat"
)

// UnreadDigestJob periodically reminds users about messages that have sat
// unread for longer than the window. One push per user per run at most;
// dispatch failures are logged and never retried.
type UnreadDigestJob struct {
	Store    chat.MessageStore
	Notifier chat.Dispatcher
	Window   time.Duration
}

func (j *UnreadDigestJob) Run() {
	log.Println("Running job: UnreadDigest...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	digests, err := j.Store.ListUnreadDigests(ctx, time.Now().Add(-j.Window))
	if err != nil {
		log.Printf("Error collecting unread digests: %v", err)
		return
	}

	for _, d := range digests {
		body := fmt.Sprintf("You have %d unread message(s) waiting for you.", d.Unread)
		if err := j.Notifier.Push(d.ReceiverID, "Unread messages", body, nil); err != nil {
			log.Printf("Failed to push unread digest to user %d: %v", d.ReceiverID, err)
		}
	}
}
