package router

import (
	"github.com/labstack/echo/v4"

	"tradenest/internal/adapter/api/handler"
)

// SetupWebSocketRouter exposes the WebSocket attach endpoint. Auth happens
// inside the handler via a token query parameter.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket)
}
