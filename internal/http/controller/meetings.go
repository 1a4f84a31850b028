package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"classlive/internal/http/dto"
	"classlive/internal/http/resp"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin is enforced by the auth proxy in front of this service.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Meetings upgrades the connection into the signaling hub. The socket stays
// open until the client disconnects; room membership is negotiated over the
// socket itself via join-room.
func (h *Handler) Meetings(c *gin.Context) {
	user := userID(c)
	if user == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: resp.CodeBadRequest, Message: "user required"})
		return
	}
	name := userName(c)
	if name == "" {
		name = user
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.String("user_id", user), zap.Error(err))
		return
	}

	h.signal.ServeConn(c.Request.Context(), conn, user, name)
}
