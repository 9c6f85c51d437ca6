package handlers

import (
	"awp/internal/services"
	"awp/pkg/config"
	"awp/pkg/jwt"
	"awp/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler WebSocket处理器
// 向管理端实时推送各公寓站点的在线客户端统计
type WebSocketHandler struct {
	upgrader          websocket.Upgrader
	log               *logrus.Logger
	jwtManager        *jwt.JWTManager
	controllerService *services.ControllerService
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(controllerService *services.ControllerService) *WebSocketHandler {
	cfg := config.GetConfig()
	allowedOrigins := cfg.CORS.AllowOrigins

	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// 同源请求Origin为空，放行
				if origin == "" {
					return true
				}

				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}

				logger.GetLogger().Warnf("WebSocket连接被拒绝，非法Origin: %s", origin)
				return false
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log:               logger.GetLogger(),
		jwtManager:        jwt.GetJWTManager(),
		controllerService: controllerService,
	}
}

// StreamClientCounts 推送在线客户端统计
// 鉴权通过query参数携带token（浏览器WebSocket不支持自定义请求头）
func (h *WebSocketHandler) StreamClientCounts(c *gin.Context) {
	token := c.Query("token")
	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token无效或已过期"})
		return
	}
	if claims.Role == "student" {
		c.JSON(http.StatusForbidden, gin.H{"message": "权限不足"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WebSocket升级失败: %v", err)
		return
	}
	defer conn.Close()

	h.log.WithFields(logrus.Fields{
		"user_id": claims.UserID,
	}).Info("在线统计推送连接建立")

	// 读协程只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			counts, err := h.controllerService.GetOnlineCounts()
			if err != nil {
				h.log.Errorf("读取在线统计失败: %v", err)
				continue
			}
			if err := conn.WriteJSON(counts); err != nil {
				return
			}
		}
	}
}
