package server

import (
	"hotorflop/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFollowing handles GET /api/friends
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	edges, err := s.friendService.Following(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(edges)
}

// GetFollowers handles GET /api/friends/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.friendService.Followers(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetCloseFriends handles GET /api/friends/close
func (s *Server) GetCloseFriends(c *fiber.Ctx) error {
	edges, err := s.friendService.CloseFriends(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(edges)
}

// Follow handles POST /api/friends/:userId
func (s *Server) Follow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.friendService.Follow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"following": true})
}

// Unfollow handles DELETE /api/friends/:userId
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.friendService.Unfollow(c.UserContext(), currentUserID(c), targetID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetCloseFriend handles PUT /api/friends/:userId/close
func (s *Server) SetCloseFriend(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		CloseFriend *bool `json:"close_friend"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.CloseFriend == nil {
		return respondWithAppError(c, models.NewValidationError("close_friend is required"))
	}

	if err := s.friendService.SetCloseFriend(c.UserContext(), currentUserID(c), targetID, *req.CloseFriend); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"close_friend": *req.CloseFriend})
}
