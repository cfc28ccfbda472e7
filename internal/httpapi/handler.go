package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pediattend/internal/attendance"
	"pediattend/internal/auth"
	"pediattend/internal/metrics"
	"pediattend/internal/user"
)

// Service is the attendance orchestrator surface the handlers need.
type Service interface {
	CheckIn(ctx context.Context, subject string, lat, lng float64, photoBase64 string) (attendance.Record, error)
	ListAll(ctx context.Context, subject string) ([]attendance.Record, error)
	Export(ctx context.Context, subject string) (attendance.ExportSummary, error)
}

// Directory is the user lookup the login handler needs.
type Directory interface {
	ByPhoneOrEmail(ctx context.Context, ident string) (*user.User, error)
}

// Handler binds HTTP requests to the attendance service.
type Handler struct {
	svc       Service
	users     Directory
	secretKey string
	accessTTL time.Duration
	logger    *slog.Logger
}

// New creates a handler.
func New(svc Service, users Directory, secretKey string, accessTTL time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, users: users, secretKey: secretKey, accessTTL: accessTTL, logger: logger}
}

// Register mounts all routes on the engine. Protected routes share the bearer
// middleware; role checks happen in the service against the stored user.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Root)
	r.POST("/auth/login", h.Login)

	protected := r.Group("/", auth.Bearer(h.secretKey))
	protected.POST("/attendance/checkin", h.CheckIn)
	protected.GET("/admin/list", h.AdminList)
	protected.GET("/admin/export", h.AdminExport)
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "PediAttendance API"})
}

type loginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates by phone or email plus password and returns a bearer
// token. User-not-found and wrong-password produce the identical response so
// accounts cannot be enumerated.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and password required"})
		return
	}

	u, err := h.users.ByPhoneOrEmail(c.Request.Context(), req.Phone)
	if err != nil {
		h.logger.Error("login lookup failed", slog.String("error", err.Error()))
		metrics.Logins.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if u == nil || !u.IsActive || !auth.CheckPassword(req.Password, u.PasswordHash) {
		metrics.Logins.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect credentials"})
		return
	}

	token, err := auth.Issue(u.Subject(), u.UserType, h.secretKey, h.accessTTL)
	if err != nil {
		h.logger.Error("token issue failed", slog.String("error", err.Error()))
		metrics.Logins.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_type":    u.UserType,
	})
}

type checkinRequest struct {
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	PhotoBase64 string   `json:"photo_base64"`
}

func (h *Handler) CheckIn(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		metrics.Checkins.WithLabelValues("unauthorized").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude required"})
		return
	}

	rec, err := h.svc.CheckIn(c.Request.Context(), claims.Subject, *req.Latitude, *req.Longitude, req.PhotoBase64)
	if err != nil {
		metrics.Checkins.WithLabelValues(outcome(err)).Inc()
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	metrics.Checkins.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "attendance recorded", "id": rec.ID})
}

func (h *Handler) AdminList(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	recs, err := h.svc.ListAll(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) AdminExport(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	sum, err := h.svc.Export(c.Request.Context(), claims.Subject)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// statusFor translates service error kinds to HTTP statuses. Unknown errors
// are internal: their detail never reaches the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, attendance.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, attendance.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, attendance.ErrOutOfBounds), errors.Is(err, attendance.ErrUploadFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, attendance.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, attendance.ErrForbidden):
		return "forbidden"
	case errors.Is(err, attendance.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, attendance.ErrUploadFailed):
		return "upload_failed"
	default:
		return "error"
	}
}
