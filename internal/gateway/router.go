package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts the socket endpoint and the read-only HTTP API. The socket
// sits beside gin rather than under it: the upgrade writes the 101 status
// itself and gin refuses to hijack a writer whose header went out.
func NewRouter(h *Hub, mode string) http.Handler {
	if strings.TrimSpace(mode) != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"rooms":       h.svc.Directory().Len(),
			"connections": h.Connections(),
		})
	})
	r.GET("/api/games", func(c *gin.Context) {
		c.JSON(http.StatusOK, overview(h.svc.Games()))
	})
	r.GET("/api/rooms/:id", func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		v, ok := h.svc.Snapshot(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found", "code": "room_not_found"})
			return
		}
		c.JSON(http.StatusOK, gameState(v))
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.Handle("/", r)
	return mux
}
