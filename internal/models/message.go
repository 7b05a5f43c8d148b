package models

import "time"

// Message is one entry of the ordered "messages:<chatID>" list.
// Messages are immutable once written.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chatId"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Streak is the daily continuity counter stored under "streak:<chatID>".
// Count is 0 exactly when LastDate is empty (no messages ever exchanged).
// LastDate is a UTC calendar date in YYYY-MM-DD form.
type Streak struct {
	Count        int      `json:"count"`
	LastDate     string   `json:"lastDate,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

// ChatSummary is the derived per-chat view returned by GET /chats.
// It is computed on read and never persisted.
type ChatSummary struct {
	ChatID        string   `json:"chatId"`
	OtherUser     *Profile `json:"otherUser,omitempty"`
	LastMessage   Message  `json:"lastMessage"`
	Streak        Streak   `json:"streak"`
	MessagesCount int      `json:"messagesCount"`
}

// ChatEvent is broadcasted through websockets.
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	Streak  *Streak  `json:"streak,omitempty"`
}
