package repository

import (
	"context"
	"time"

	"hotorflop/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct message data operations
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	UpdateContent(ctx context.Context, id uint, content string, editedAt time.Time) error
	Delete(ctx context.Context, id uint) error
	// ListBetween returns the thread of a and b newest first, below beforeID when set.
	ListBetween(ctx context.Context, a, b uint, beforeID uint, limit int) ([]*models.Message, error)
	Search(ctx context.Context, a, b uint, term string, limit int) ([]*models.Message, error)
	// MarkRead flags everything senderID sent to receiverID as read.
	MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	Conversations(ctx context.Context, userID uint, limit int) ([]*models.Conversation, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	return storeError(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, lookupError(err, "Message", id)
	}
	return &msg, nil
}

func (r *messageRepository) UpdateContent(ctx context.Context, id uint, content string, editedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).Updates(map[string]any{
		"content":   content,
		"edited_at": editedAt,
	})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

func (r *messageRepository) thread(ctx context.Context, a, b uint) *gorm.DB {
	return r.db.WithContext(ctx).Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)
}

func (r *messageRepository) ListBetween(ctx context.Context, a, b uint, beforeID uint, limit int) ([]*models.Message, error) {
	msgs := []*models.Message{}
	q := r.thread(ctx, a, b)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	if err := q.Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, storeError(err)
	}
	return msgs, nil
}

func (r *messageRepository) Search(ctx context.Context, a, b uint, term string, limit int) ([]*models.Message, error) {
	msgs := []*models.Message{}
	if err := r.thread(ctx, a, b).
		Where(`LOWER(content) LIKE ? ESCAPE '\'`, containsPattern(term)).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, storeError(err)
	}
	return msgs, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, receiverID, senderID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, storeError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&n).Error; err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

type conversationRow struct {
	PartnerID uint
	LastID    uint
	Unread    int64
}

func (r *messageRepository) Conversations(ctx context.Context, userID uint, limit int) ([]*models.Conversation, error) {
	var rows []conversationRow
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Select(`CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id,
			MAX(id) AS last_id,
			SUM(CASE WHEN receiver_id = ? AND read = ? THEN 1 ELSE 0 END) AS unread`, userID, userID, false).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("partner_id").
		Order("last_id DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return []*models.Conversation{}, nil
	}

	lastIDs := make([]uint, 0, len(rows))
	partnerIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		lastIDs = append(lastIDs, row.LastID)
		partnerIDs = append(partnerIDs, row.PartnerID)
	}

	var last []models.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", lastIDs).Find(&last).Error; err != nil {
		return nil, storeError(err)
	}
	var partners []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", partnerIDs).Find(&partners).Error; err != nil {
		return nil, storeError(err)
	}
	lastByID := make(map[uint]models.Message, len(last))
	for _, m := range last {
		lastByID[m.ID] = m
	}
	userByID := make(map[uint]models.User, len(partners))
	for _, u := range partners {
		userByID[u.ID] = u
	}

	out := make([]*models.Conversation, 0, len(rows))
	for _, row := range rows {
		user, ok := userByID[row.PartnerID]
		if !ok {
			continue
		}
		msg := lastByID[row.LastID]
		out = append(out, &models.Conversation{
			User:          user,
			LastMessage:   msg.Content,
			LastMessageAt: msg.CreatedAt,
			LastSenderID:  msg.SenderID,
			UnreadCount:   row.Unread,
		})
	}
	return out, nil
}
