package rest

import (
	"strconv"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/auth"
	"github.com/dmitrijs2005/chatandpay/internal/server/envelope"
	"github.com/dmitrijs2005/chatandpay/internal/server/models"
	"github.com/dmitrijs2005/chatandpay/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type loginRequest struct {
	LoginHandle string `json:"login_handle"`
	Password    string `json:"password"`
}

type phoneRequest struct {
	Phone string `json:"phone"`
}

type confirmRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// updateProfileRequest keeps login_handle and password as pointers so an
// absent or null field leaves the stored value alone.
type updateProfileRequest struct {
	LoginHandle *string `json:"login_handle"`
	Password    *string `json:"password"`
	Phone       string  `json:"phone"`
}

type userResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	LoginHandle *string `json:"login_handle"`
	Phone       string  `json:"phone"`
	Role        string  `json:"role"`
}

type sessionResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, LoginHandle: u.LoginHandle, Phone: u.Phone, Role: u.Role}
}

func (s *HTTPServer) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

func (s *HTTPServer) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return common.Validation("invalid request body")
	}

	user, err := s.identity.Register(c.UserContext(), services.RegisterInput{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": toUserResponse(user)})
}

func (s *HTTPServer) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return common.Validation("invalid request body")
	}

	user, err := s.identity.Login(c.UserContext(), services.LoginInput{LoginHandle: req.LoginHandle, Password: req.Password})
	if err != nil {
		return err
	}
	return s.session(c, user)
}

func (s *HTTPServer) startPhoneAuth(c *fiber.Ctx) error {
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return common.Validation("invalid request body")
	}

	if _, err := s.identity.StartPhoneAuth(c.UserContext(), req.Phone); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "SENT"})
}

func (s *HTTPServer) confirmPhoneAuth(c *fiber.Ctx) error {
	var req confirmRequest
	if err := c.BodyParser(&req); err != nil {
		return common.Validation("invalid request body")
	}

	user, err := s.identity.ConfirmPhoneAuth(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return err
	}
	return s.session(c, user)
}

func (s *HTTPServer) updateProfile(c *fiber.Ctx) error {
	id, err := s.authorizedTarget(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return common.Validation("invalid request body")
	}

	user, err := s.identity.UpdateProfile(c.UserContext(), id, services.UpdateProfileInput{
		LoginHandle: req.LoginHandle,
		Password:    req.Password,
		Phone:       req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

func (s *HTTPServer) deleteUser(c *fiber.Ctx) error {
	id, err := s.authorizedTarget(c)
	if err != nil {
		return err
	}
	if err := s.identity.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// authorizedTarget parses :id and checks that the caller owns it or is an admin.
func (s *HTTPServer) authorizedTarget(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, common.Validation("id must be an integer")
	}
	p, ok := auth.PrincipalFromContext(c.UserContext())
	if !ok {
		return 0, envelope.Unauthorized("missing token")
	}
	if !p.CanManage(id) {
		return 0, envelope.Forbidden("not allowed to manage this user")
	}
	return id, nil
}

func (s *HTTPServer) session(c *fiber.Ctx, user *models.User) error {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return common.Internal(err)
	}
	return c.JSON(sessionResponse{User: toUserResponse(user), AccessToken: token})
}
