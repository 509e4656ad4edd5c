package server

import (
	"hotorflop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	URL         string   `json:"url"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Audience    string   `json:"audience"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:    currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		URL:         req.URL,
		Category:    req.Category,
		Price:       req.Price,
		Audience:    req.Audience,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	cursor, err := parseCursor(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListByAuthor(c.UserContext(), service.ListAuthorPostsInput{
		ViewerID: currentUserID(c),
		AuthorID: authorID,
		Cursor:   cursor,
		Limit:    parsePagination(c, s.config.FeedPageSize).Limit,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(posts)
}
