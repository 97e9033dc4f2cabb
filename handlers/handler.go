package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"booktable-api/apperr"
	"booktable-api/middleware"
	"booktable-api/services"

	"github.com/gin-gonic/gin"
)

// Handler adapts the services to gin.
type Handler struct {
	svc    *services.Services
	errMap *apperr.Mapper
	log    *slog.Logger
}

func New(svc *services.Services, log *slog.Logger) *Handler {
	return &Handler{svc: svc, errMap: apperr.NewMapper(), log: log}
}

// respondError writes {"error", "kind"} with the mapped status.
func (h *Handler) respondError(c *gin.Context, err error) {
	info := h.errMap.Map(err)
	if info.Status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", c.GetString("requestID")),
			slog.Any("error", err))
	}
	c.JSON(info.Status, gin.H{"error": info.Message, "kind": info.Kind})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperr.KindValidation})
}

func caller(c *gin.Context) services.Caller {
	return services.Caller{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// paramID parses a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "kind": apperr.KindValidation})
		return 0, false
	}
	return uint(id), true
}
