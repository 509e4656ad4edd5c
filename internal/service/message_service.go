package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"hotorflop/internal/middleware"
	"hotorflop/internal/models"
	"hotorflop/internal/notifications"
	"hotorflop/internal/repository"
)

const (
	maxMessageLen        = 2000
	maxSearchTermLen     = 100
	maxSearchResults     = 50
	defaultMessagePage   = 50
	maxMessagePage       = 100
	defaultConversations = 50
)

// Live frame types pushed to connected clients.
const (
	FrameMessageCreated = "message.created"
	FrameMessageUpdated = "message.updated"
	FrameMessageDeleted = "message.deleted"
	FrameMessagesRead   = "messages.read"
)

// LiveDelivery pushes frames to users connected to this instance.
type LiveDelivery interface {
	Deliver(frame notifications.Frame, userIDs ...uint)
}

type noLive struct{}

func (noLive) Deliver(notifications.Frame, ...uint) {}

// MessageService handles direct messages between connected users.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	visibility  *VisibilityService
	publisher   notifications.Publisher
	live        LiveDelivery
}

type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Content    string
	ReplyToID  *uint
}

type ListMessagesInput struct {
	UserID    uint
	PartnerID uint
	// Cursor is the id of the oldest message already loaded.
	Cursor uint
	Limit  int
}

// MessagePage is one page of a thread in chronological order.
type MessagePage struct {
	Messages   []*models.Message `json:"messages"`
	NextCursor *uint             `json:"next_cursor"`
}

// NewMessageService returns a MessageService. Nil publisher or live drop their output.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	visibility *VisibilityService,
	publisher notifications.Publisher,
	live LiveDelivery,
) *MessageService {
	if publisher == nil {
		publisher = notifications.Noop{}
	}
	if live == nil {
		live = noLive{}
	}
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		visibility:  visibility,
		publisher:   publisher,
		live:        live,
	}
}

func messageContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", models.NewValidationError("Message is required")
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return "", models.NewValidationError("Message too long (max 2000 characters)")
	}
	return content, nil
}

// Send delivers a message to someone the sender follows or is followed by.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content, err := messageContent(in.Content)
	if err != nil {
		return nil, err
	}
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, in.ReceiverID); err != nil {
		return nil, err
	}
	ok, err := s.visibility.Connected(ctx, in.SenderID, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You can only message people you follow or who follow you")
	}

	if in.ReplyToID != nil {
		parent, err := s.messageRepo.GetByID(ctx, *in.ReplyToID)
		if err != nil && models.ErrorCode(err) != models.CodeNotFound {
			return nil, err
		}
		if err != nil || !parent.Involves(in.SenderID) || !parent.Involves(in.ReceiverID) {
			return nil, models.NewValidationError("Reply must belong to this conversation")
		}
	}

	msg := &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
		ReplyToID:  in.ReplyToID,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishMessageSent(ctx, notifications.MessageSentEvent{
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
	}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish message event",
			slog.Uint64("message_id", uint64(msg.ID)),
			slog.String("error", err.Error()),
		)
	}
	s.live.Deliver(notifications.Frame{Type: FrameMessageCreated, Payload: msg}, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

// List pages backwards through the thread between UserID and PartnerID.
func (s *MessageService) List(ctx context.Context, in ListMessagesInput) (*MessagePage, error) {
	if _, err := s.userRepo.GetByID(ctx, in.PartnerID); err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}

	msgs, err := s.messageRepo.ListBetween(ctx, in.UserID, in.PartnerID, in.Cursor, limit)
	if err != nil {
		return nil, err
	}
	page := &MessagePage{Messages: msgs}
	if len(msgs) == limit {
		next := msgs[len(msgs)-1].ID
		page.NextCursor = &next
	}
	slices.Reverse(page.Messages)
	return page, nil
}

// owned loads a message userID sent. Messages the user is not part of are NOT_FOUND.
func (s *MessageService) owned(ctx context.Context, userID, messageID uint) (*models.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !msg.Involves(userID) {
		return nil, models.NewNotFoundError("Message", messageID)
	}
	if msg.SenderID != userID {
		return nil, models.NewForbiddenError("Only the sender can change this message")
	}
	return msg, nil
}

// Edit replaces the content of a message the user sent.
func (s *MessageService) Edit(ctx context.Context, userID, messageID uint, raw string) (*models.Message, error) {
	content, err := messageContent(raw)
	if err != nil {
		return nil, err
	}
	msg, err := s.owned(ctx, userID, messageID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.messageRepo.UpdateContent(ctx, msg.ID, content, now); err != nil {
		return nil, err
	}
	msg.Content = content
	msg.EditedAt = &now
	s.live.Deliver(notifications.Frame{Type: FrameMessageUpdated, Payload: msg}, msg.SenderID, msg.ReceiverID)
	return msg, nil
}

// Delete removes a message the user sent.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uint) error {
	msg, err := s.owned(ctx, userID, messageID)
	if err != nil {
		return err
	}
	if err := s.messageRepo.Delete(ctx, msg.ID); err != nil {
		return err
	}
	s.live.Deliver(notifications.Frame{
		Type:    FrameMessageDeleted,
		Payload: map[string]uint{"id": msg.ID},
	}, msg.SenderID, msg.ReceiverID)
	return nil
}

// MarkRead flags everything partnerID sent to userID as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, partnerID uint) (int64, error) {
	n, err := s.messageRepo.MarkRead(ctx, userID, partnerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.live.Deliver(notifications.Frame{
			Type:    FrameMessagesRead,
			Payload: map[string]any{"reader_id": userID, "count": n},
		}, partnerID)
	}
	return n, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, userID)
}

// Conversations lists the user's threads, most recent first.
func (s *MessageService) Conversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.messageRepo.Conversations(ctx, userID, defaultConversations)
}

// Search finds messages in one thread containing term, newest first.
func (s *MessageService) Search(ctx context.Context, userID, partnerID uint, term string) ([]*models.Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.NewValidationError("Search term is required")
	}
	if utf8.RuneCountInString(term) > maxSearchTermLen {
		return nil, models.NewValidationError("Search term too long (max 100 characters)")
	}
	return s.messageRepo.Search(ctx, userID, partnerID, term, maxSearchResults)
}
