package server

import "github.com/gofiber/fiber/v2"

// GetWishlist handles GET /api/wishlist
func (s *Server) GetWishlist(c *fiber.Ctx) error {
	items, err := s.wishlistService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(items)
}

// AddToWishlist handles POST /api/wishlist/:postId
func (s *Server) AddToWishlist(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.wishlistService.Add(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post_id": postID})
}

// RemoveFromWishlist handles DELETE /api/wishlist/:postId
func (s *Server) RemoveFromWishlist(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.wishlistService.Remove(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
