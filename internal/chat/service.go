package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"shortkat/internal/kvstore"
	"shortkat/internal/models"
	"shortkat/internal/observability"
	"shortkat/internal/repositories"
	"shortkat/internal/streak"
)

var (
	ErrSelfMessage       = errors.New("cannot message self")
	ErrEmptyText         = errors.New("message text is empty")
	ErrRecipientNotFound = errors.New("recipient not found")
)

// Service orchestrates message sends and the chat read-side queries.
type Service interface {
	SendMessage(ctx context.Context, senderID, recipientID, text string) (models.Message, models.Streak, error)
	ListMessages(ctx context.Context, requesterID, otherUserID string) ([]models.Message, models.Streak, error)
	ListChats(ctx context.Context, requesterID string) ([]models.ChatSummary, error)
}

// KVService is a document-store implementation of Service. All mutations to
// a chat's message list and streak run under the chat's key lock, so two
// concurrent sends cannot overwrite each other's append.
type KVService struct {
	store kvstore.Store
	users repositories.UserRepository
	locks *kvstore.KeyedMutex
	now   func() time.Time
}

// NewService constructs a KVService.
func NewService(store kvstore.Store, users repositories.UserRepository, locks *kvstore.KeyedMutex) *KVService {
	return &KVService{store: store, users: users, locks: locks, now: time.Now}
}

// WithClock overrides the wall clock. Used by tests.
func (s *KVService) WithClock(now func() time.Time) *KVService {
	s.now = now
	return s
}

func messagesKey(chatID string) string { return "messages:" + chatID }
func streakKey(chatID string) string   { return "streak:" + chatID }

// SendMessage validates, appends the message to the chat's ordered list and
// advances the streak, both under the chat's lock. The message write and the
// streak write are two separate documents; a crash in between leaves the
// message persisted with a stale streak, which the next send repairs.
func (s *KVService) SendMessage(ctx context.Context, senderID, recipientID, text string) (models.Message, models.Streak, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, models.Streak{}, ErrEmptyText
	}
	if senderID == recipientID {
		return models.Message{}, models.Streak{}, ErrSelfMessage
	}

	if _, err := s.users.GetProfile(ctx, recipientID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return models.Message{}, models.Streak{}, ErrRecipientNotFound
		}
		return models.Message{}, models.Streak{}, err
	}

	chatID := DeriveChatID(senderID, recipientID)
	now := s.now().UTC()

	message := models.Message{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		CreatedAt:   now,
	}

	s.locks.Lock(chatID)
	defer s.locks.Unlock(chatID)

	var messages []models.Message
	err := kvstore.GetJSON(ctx, s.store, messagesKey(chatID), &messages)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.Message{}, models.Streak{}, err
	}
	messages = append(messages, message)
	if err := kvstore.SetJSON(ctx, s.store, messagesKey(chatID), messages); err != nil {
		return models.Message{}, models.Streak{}, err
	}

	current, err := s.loadStreak(ctx, chatID)
	if err != nil {
		return models.Message{}, models.Streak{}, err
	}
	if len(current.Participants) == 0 {
		current.Participants = []string{senderID, recipientID}
	}

	today := streak.Today(now)
	next, err := streak.Advance(current, today)
	if err != nil {
		return models.Message{}, models.Streak{}, err
	}
	observability.IncStreakTransition(streak.Classify(current, today).String())
	if next.Count != current.Count || next.LastDate != current.LastDate {
		if err := kvstore.SetJSON(ctx, s.store, streakKey(chatID), next); err != nil {
			return models.Message{}, models.Streak{}, err
		}
	}

	return message, next, nil
}

// ListMessages returns the full chat history in chronological order plus the
// current streak. No pagination; clients fetch the whole chat.
func (s *KVService) ListMessages(ctx context.Context, requesterID, otherUserID string) ([]models.Message, models.Streak, error) {
	chatID := DeriveChatID(requesterID, otherUserID)

	var messages []models.Message
	err := kvstore.GetJSON(ctx, s.store, messagesKey(chatID), &messages)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, models.Streak{}, err
	}

	current, err := s.loadStreak(ctx, chatID)
	if err != nil {
		return nil, models.Streak{}, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, current, nil
}

// ListChats scans all message lists, keeps the ones the requester takes part
// in, and builds a summary per chat sorted by last activity, newest first.
func (s *KVService) ListChats(ctx context.Context, requesterID string) ([]models.ChatSummary, error) {
	raws, err := s.store.GetByPrefix(ctx, "messages:")
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(raws))
	for _, raw := range raws {
		var messages []models.Message
		if err := json.Unmarshal(raw, &messages); err != nil || len(messages) == 0 {
			continue
		}

		chatID := messages[0].ChatID
		otherUserID, ok := counterpart(chatID, requesterID)
		if !ok {
			continue
		}

		current, err := s.loadStreak(ctx, chatID)
		if err != nil {
			return nil, err
		}

		summary := models.ChatSummary{
			ChatID:        chatID,
			LastMessage:   messages[len(messages)-1],
			Streak:        current,
			MessagesCount: len(messages),
		}
		if profile, err := s.users.GetProfile(ctx, otherUserID); err == nil {
			summary.OtherUser = &profile
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}

func (s *KVService) loadStreak(ctx context.Context, chatID string) (models.Streak, error) {
	var current models.Streak
	err := kvstore.GetJSON(ctx, s.store, streakKey(chatID), &current)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.Streak{}, nil
	}
	return current, err
}

// counterpart returns the other participant of chatID, or false when the
// user is not part of the chat.
func counterpart(chatID, userID string) (string, bool) {
	parts := strings.SplitN(chatID, Separator, 2)
	if len(parts) != 2 {
		return "", false
	}
	switch userID {
	case parts[0]:
		return parts[1], true
	case parts[1]:
		return parts[0], true
	}
	return "", false
}

var _ Service = (*KVService)(nil)
