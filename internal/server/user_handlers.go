package server

import (
	"hotorflop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me.
// @Summary Get current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me.
// @Summary Update current user
// @Description Change name, username or profile picture. Omitted fields keep their value.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,username=string,profile_pic=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name       *string `json:"name"`
		Username   *string `json:"username"`
		ProfilePic *string `json:"profile_pic"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:     currentUserID(c),
		Name:       req.Name,
		Username:   req.Username,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=
// @Summary Search users by username
// @Tags users
// @Produce json
// @Param q query string true "Part of a username"
// @Success 200 {array} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.SearchUsers(c.UserContext(), currentUserID(c), c.Query("q"))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(user)
}
