package server

import (
	"hotorflop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CastVote handles POST /api/posts/:id/vote
// @Summary Vote on a post
// @Description Cast a yes/no vote. A repeat vote changes nothing and answers 200 with applied=false.
// @Tags votes
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{choice=string} true "yes or no"
// @Success 201 {object} service.VoteOutcome
// @Success 200 {object} service.VoteOutcome
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/vote [post]
func (s *Server) CastVote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Choice string `json:"choice"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	outcome, err := s.voteService.Cast(c.UserContext(), service.CastVoteInput{
		VoterID: currentUserID(c),
		PostID:  postID,
		Choice:  req.Choice,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}

	status := fiber.StatusCreated
	if !outcome.Applied {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(outcome)
}

// GetResults handles GET /api/posts/:id/results
func (s *Server) GetResults(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.voteService.Results(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(result)
}
