package server

import (
	"hotorflop/internal/featureflags"
	"hotorflop/internal/models"
	"hotorflop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?cursor=&limit=
// @Summary Get feed
// @Description Posts the caller may see and has not voted on, newest first.
// @Tags feed
// @Produce json
// @Param cursor query int false "Id of the last post of the previous page"
// @Param limit query int false "Page size"
// @Success 200 {object} service.FeedPage
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	cursor, err := parseCursor(c)
	if err != nil {
		return nil
	}

	page, err := s.feedService.Feed(c.UserContext(), service.FeedInput{
		ViewerID: currentUserID(c),
		Cursor:   cursor,
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(page)
}

// GetRandomPost handles GET /api/feed/random. It is gated by the random_feed flag.
func (s *Server) GetRandomPost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if !s.featureFlags.Enabled(featureflags.RandomFeed, userID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Feature", featureflags.RandomFeed))
	}

	post, err := s.feedService.Random(c.UserContext(), userID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(post)
}
