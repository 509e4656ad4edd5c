package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"hotorflop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTicketsUnavailable is returned when there is no Redis to hold tickets.
var ErrTicketsUnavailable = errors.New("websocket tickets need redis")

// TicketKey is the redis key holding the user id a ticket was issued to.
func TicketKey(ticket string) string {
	return "ws_ticket:" + ticket
}

// IssueTicket stores a single-use websocket ticket for userID.
func IssueTicket(ctx context.Context, rdb *redis.Client, userID uint, ttl time.Duration) (string, error) {
	if rdb == nil {
		return "", ErrTicketsUnavailable
	}
	ticket := uuid.NewString()
	if err := rdb.Set(ctx, TicketKey(ticket), userID, ttl).Err(); err != nil {
		return "", err
	}
	return ticket, nil
}

// TicketAuth authenticates websocket upgrades. Browsers cannot send headers on
// upgrade, so a ?ticket= from IssueTicket is accepted and consumed; without
// one the request must pass AuthRequired.
func TicketAuth(rdb *redis.Client) fiber.Handler {
	bearer := AuthRequired(rdb)
	return func(c *fiber.Ctx) error {
		ticket := c.Query("ticket")
		if ticket == "" {
			return bearer(c)
		}
		if rdb == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired ticket"))
		}

		raw, err := rdb.GetDel(c.UserContext(), TicketKey(ticket)).Result()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired ticket"))
		}
		userID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired ticket"))
		}

		c.Locals("userID", uint(userID))
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, uint(userID)))
		return c.Next()
	}
}
