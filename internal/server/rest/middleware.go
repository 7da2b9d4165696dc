package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/chatandpay/internal/common"
	"github.com/dmitrijs2005/chatandpay/internal/server/auth"
	"github.com/dmitrijs2005/chatandpay/internal/server/envelope"
	"github.com/dmitrijs2005/chatandpay/internal/server/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// observe tags the request with an id, renders any error through the error
// handler, then logs the request and records metrics.
func (s *HTTPServer) observe(c *fiber.Ctx) error {
	requestID := c.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDHeader, requestID)

	start := s.now()
	if err := c.Next(); err != nil {
		if herr := s.errorHandler(c, err); herr != nil {
			return herr
		}
	}
	elapsed := s.now().Sub(start)

	route := c.Method() + " " + c.Route().Path
	code := strconv.Itoa(c.Response().StatusCode())
	if s.metrics != nil {
		s.metrics.Observe(metrics.TransportHTTP, route, code, elapsed)
	}
	s.logger.Info(c.UserContext(), "http request",
		"request_id", requestID, "route", route, "status", code, "duration", elapsed)
	return nil
}

// errorHandler writes exactly one envelope per failure. Server faults are
// logged with their cause, which never reaches the client.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	var env *envelope.Envelope

	var fe *fiber.Error
	if errors.As(err, &fe) {
		env = envelope.New(statusCodeName(fe.Code), fe.Message, fe.Code)
	} else {
		env = envelope.FromError(err)
	}

	if env.IsServerFault() {
		s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err.Error())
	}
	return c.Status(env.Status).JSON(env)
}

// statusCodeName turns 404 into "NOT_FOUND".
func statusCodeName(status int) string {
	text := http.StatusText(status)
	if text == "" {
		text = "Error"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// authenticate resolves the principal from "Authorization: Bearer" or the
// access_token header.
func (s *HTTPServer) authenticate(c *fiber.Ctx) error {
	token := c.Get(common.AccessTokenHeaderName)
	if token == "" {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, rest, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}
	}
	if token == "" {
		return envelope.Unauthorized("missing token")
	}

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return envelope.Unauthorized("token expired")
		}
		return envelope.Unauthorized("invalid token")
	}

	user, err := s.identity.GetUser(c.UserContext(), userID)
	if err != nil {
		if common.KindOf(err) == common.KindNotFound {
			return envelope.Unauthorized("invalid token")
		}
		return err
	}

	c.SetUserContext(auth.WithPrincipal(c.UserContext(), auth.NewPrincipal(user)))
	return c.Next()
}

// throttle limits phone challenge sends per phone number.
func (s *HTTPServer) throttle(c *fiber.Ctx) error {
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return common.Validation("invalid request body")
	}
	if !s.limiter.Allow(req.Phone, s.now()) {
		if s.metrics != nil {
			s.metrics.Throttled(metrics.TransportHTTP)
		}
		return envelope.TooManyRequests("too many verification requests, try again later")
	}
	return c.Next()
}
