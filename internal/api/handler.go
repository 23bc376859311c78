package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/internal/commands"
	"github.com/rotmg-stash/stash-helper/pkg/model"
	"github.com/rotmg-stash/stash-helper/pkg/utils"
)

// Commands defines the operations exposed over the bridge.
type Commands interface {
	FetchAccountDump(ctx context.Context, guid, password string) (string, error)
	GetOrCreateSettings(ctx context.Context) (model.Settings, error)
	Launch(ctx context.Context, exaltDir, deviceToken, guid, password string) (string, error)
}

// BridgeHandler serves the shell commands over local HTTP.
type BridgeHandler struct {
	logger             *zap.Logger
	commands           Commands
	defaultDeviceToken string
}

// NewBridgeHandler creates a new BridgeHandler. defaultDeviceToken is used
// for launch requests that carry no deviceToken.
func NewBridgeHandler(logger *zap.Logger, cmds Commands, defaultDeviceToken string) *BridgeHandler {
	if defaultDeviceToken == "" {
		defaultDeviceToken = model.DefaultDeviceToken
	}
	return &BridgeHandler{
		logger:             logger,
		commands:           cmds,
		defaultDeviceToken: defaultDeviceToken,
	}
}

// AccountDumpHandler returns the raw account data document as text.
func (h *BridgeHandler) AccountDumpHandler(c *fiber.Ctx) error {
	var req AccountDumpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	body, err := h.commands.FetchAccountDump(c.UserContext(), req.GUID, req.Password)
	if err != nil {
		h.logger.Error("bridge.account_dump.failed",
			zap.String("request_id", requestID(c)),
			zap.String("guid", utils.MaskGUID(req.GUID)),
			zap.Error(err))
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(body)
}

// SettingsHandler returns the local settings, creating them on first run.
func (h *BridgeHandler) SettingsHandler(c *fiber.Ctx) error {
	st, err := h.commands.GetOrCreateSettings(c.UserContext())
	if err != nil {
		h.logger.Error("bridge.settings.failed",
			zap.String("request_id", requestID(c)),
			zap.Error(err))
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(st)
}

// LaunchHandler authenticates and starts the game client.
func (h *BridgeHandler) LaunchHandler(c *fiber.Ctx) error {
	var req LaunchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	deviceToken := req.DeviceToken
	if deviceToken == "" {
		deviceToken = h.defaultDeviceToken
	}

	res, err := h.commands.Launch(c.UserContext(), req.ExaltPath, deviceToken, req.GUID, req.Password)
	if err != nil {
		h.logger.Error("bridge.launch.failed",
			zap.String("request_id", requestID(c)),
			zap.String("guid", utils.MaskGUID(req.GUID)),
			zap.Error(err))
		return h.fail(c, err)
	}

	h.logger.Info("bridge.launch.ok",
		zap.String("request_id", requestID(c)),
		zap.String("guid", utils.MaskGUID(req.GUID)))
	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *BridgeHandler) fail(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(ErrorResponse{Error: commands.UserMessage(err)})
}

// StatusFor maps a command error to an HTTP status code.
func StatusFor(err error) int {
	var me *model.Error
	if !errors.As(err, &me) {
		return fiber.StatusInternalServerError
	}
	switch me.Kind {
	case model.KindRateLimited:
		return fiber.StatusTooManyRequests
	case model.KindTokenNotFound:
		return fiber.StatusUnauthorized
	case model.KindTransport, model.KindInvalidResponse, model.KindCouldNotParseToken:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
