package middleware

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

// ActorHeader - заголовок, в который шлюз авторизации кладет ID пользователя.
const ActorHeader = "X-User-ID"

type ActorMiddleware struct {
	logger *zap.Logger
}

func NewActorMiddleware(logger *zap.Logger) *ActorMiddleware {
	return &ActorMiddleware{logger: logger}
}

// RequireActor записывает UserID из заголовка шлюза в контекст запроса.
// Без него изменения не принимаются: каждое событие истории должно знать автора.
func (m *ActorMiddleware) RequireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := strings.TrimSpace(c.Request().Header.Get(ActorHeader))
		if raw == "" {
			m.logger.Warn("ActorMiddleware: пустой заголовок " + ActorHeader)
			return utils.ErrorResponse(c, apperrors.ErrUserIDNotFoundInContext, m.logger)
		}

		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			m.logger.Warn("ActorMiddleware: неверный "+ActorHeader, zap.String("value", raw))
			return utils.ErrorResponse(c, apperrors.ErrUserIDNotFoundInContext, m.logger)
		}

		ctx := utils.WithUserID(c.Request().Context(), userID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
