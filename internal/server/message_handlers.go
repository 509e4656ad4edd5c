package server

import (
	"errors"
	"time"

	"hotorflop/internal/middleware"
	"hotorflop/internal/models"
	"hotorflop/internal/service"

	"github.com/gofiber/fiber/v2"
)

const wsTicketTTL = 30 * time.Second

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	convs, err := s.messageService.Conversations(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(convs)
}

// GetMessages handles GET /api/conversations/:userId/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	partnerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	cursor, err := parseCursor(c)
	if err != nil {
		return nil
	}

	page, err := s.messageService.List(c.UserContext(), service.ListMessagesInput{
		UserID:    currentUserID(c),
		PartnerID: partnerID,
		Cursor:    cursor,
		Limit:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(page)
}

// SendMessage handles POST /api/conversations/:userId/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	receiverID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	var req struct {
		Content   string `json:"content"`
		ReplyToID *uint  `json:"reply_to_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messageService.Send(c.UserContext(), service.SendMessageInput{
		SenderID:   currentUserID(c),
		ReceiverID: receiverID,
		Content:    req.Content,
		ReplyToID:  req.ReplyToID,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkConversationRead handles PUT /api/conversations/:userId/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	partnerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	n, err := s.messageService.MarkRead(c.UserContext(), currentUserID(c), partnerID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"marked": n})
}

// SearchMessages handles GET /api/conversations/:userId/search?q=
func (s *Server) SearchMessages(c *fiber.Ctx) error {
	partnerID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	msgs, err := s.messageService.Search(c.UserContext(), currentUserID(c), partnerID, c.Query("q"))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(msgs)
}

// GetUnreadCount handles GET /api/messages/unread
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.messageService.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// EditMessage handles PUT /api/messages/:id
func (s *Server) EditMessage(c *fiber.Ctx) error {
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	msg, err := s.messageService.Edit(c.UserContext(), currentUserID(c), messageID, req.Content)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.messageService.Delete(c.UserContext(), currentUserID(c), messageID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// IssueWSTicket handles POST /api/messages/ws-ticket
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	ticket, err := middleware.IssueTicket(c.UserContext(), s.redis, currentUserID(c), wsTicketTTL)
	if errors.Is(err, middleware.ErrTicketsUnavailable) {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewStoreUnavailableError(err))
	}
	if err != nil {
		return respondWithAppError(c, models.NewStoreUnavailableError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}
