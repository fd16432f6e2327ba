package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitledger/internal/calendar"
	"habitledger/internal/progress"
	"habitledger/pkg/circuitbreaker"
	"habitledger/pkg/logger"
)

// UserIDKey is where the auth middleware stores the authenticated user id.
const UserIDKey = "user_id"

type ProgressHandler struct {
	service *progress.Service
	logger  *zap.Logger
}

func NewProgressHandler(service *progress.Service, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{service: service, logger: logger}
}

type toggleRequest struct {
	HabitID string `json:"habitId"`
	Date    string `json:"date"`
}

// Toggle handles POST /api/progress/toggle
func (h *ProgressHandler) Toggle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.HabitID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "habitId is required"})
		return
	}

	day, err := h.parseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	result, err := h.service.Toggle(c.Request.Context(), req.HabitID, userID, day)
	if err != nil {
		h.writeError(c, "Toggle", err)
		return
	}

	message := "Habit unmarked"
	if result.Completed {
		message = "Habit marked as completed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"completed": result.Completed,
	})
}

// Completions handles GET /api/progress/completions?date=
func (h *ProgressHandler) Completions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	day, err := h.parseDay(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ids, err := h.service.CompletionsOnDay(c.Request.Context(), userID, day)
	if err != nil {
		h.writeError(c, "Completions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":              day,
		"completedHabitIds": ids,
	})
}

// Stats handles GET /api/progress/stats?period=
func (h *ProgressHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	period := progress.ParsePeriod(c.Query("period"))
	stats, err := h.service.Stats(c.Request.Context(), userID, period, h.service.Today())
	if err != nil {
		h.writeError(c, "Stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// parseDay accepts a civil date (YYYY-MM-DD) as-is, or an RFC 3339
// instant cut into a day in the service's zone. Empty means today.
func (h *ProgressHandler) parseDay(raw string) (calendar.Day, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return h.service.Today(), nil
	}
	if d, err := calendar.ParseDay(raw); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return h.service.DayOf(t), nil
	}
	return calendar.Day{}, errors.New("date must be YYYY-MM-DD or RFC 3339")
}

func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "user not authenticated"})
		return "", false
	}
	return userID, true
}

func (h *ProgressHandler) writeError(c *gin.Context, op string, err error) {
	log := logger.WithTrace(c.Request.Context(), h.logger).With(zap.String("op", op))

	switch progress.KindOf(err) {
	case progress.KindValidation:
		log.Warn("Rejected progress request", zap.Error(err))
		msg := err.Error()
		var pe *progress.Error
		if errors.As(err, &pe) && pe.Err != nil {
			msg = pe.Err.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
	case progress.KindDependencyFailure:
		status := http.StatusBadGateway
		if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
			status = http.StatusServiceUnavailable
		}
		log.Error("Progress dependency failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"message": "upstream dependency unavailable"})
	default:
		log.Error("Progress request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
