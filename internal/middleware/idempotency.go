package middleware

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/gestion_caisse/internal/utils"
	pkgredis "github.com/SscSPs/gestion_caisse/pkg/redis"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader is the request header carrying the client-chosen key.
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotentReplayedHeader marks a response served from the idempotency store.
const IdempotentReplayedHeader = "Idempotent-Replayed"

type idempotencyRecord struct {
	InFlight    bool              `json:"inFlight,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"requestHash"`
}

// Idempotency replays the first successful response for a repeated Idempotency-Key.
// Requests without the header pass through. A key whose first request is still
// running yields 409, and a key reused on another resource or with a different
// body yields 422. Keys are scoped per user, method and route.
// Failed responses release the key so the client can retry.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempotencyKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if store == nil || idempotencyKey == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := utils.Fingerprint(c.Request.URL.Path, string(body))
		key := store.IdempotencyKey(idempotencyScope(c), idempotencyKey)

		stored, err := store.Get(ctx, key)
		if err != nil && !errors.Is(err, pkgredis.ErrNil) {
			logger.Error("Idempotency lookup failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "idempotency store unavailable"})
			return
		}
		if stored != "" {
			respondFromRecord(c, logger, stored, requestHash)
			return
		}

		marker, _ := json.Marshal(idempotencyRecord{InFlight: true, RequestHash: requestHash})
		claimed, err := store.SetNX(ctx, key, string(marker), ttl)
		if err != nil {
			logger.Error("Idempotency claim failed", slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "idempotency store unavailable"})
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a request with this Idempotency-Key is already in progress"})
			return
		}

		capture := &bodyCapture{ResponseWriter: c.Writer}
		c.Writer = capture
		c.Next()

		status := capture.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Del(ctx, key); err != nil {
				logger.Warn("Failed to release idempotency key", slog.String("error", err.Error()))
			}
			return
		}

		record := idempotencyRecord{
			Status:      status,
			Body:        base64.StdEncoding.EncodeToString(capture.body.Bytes()),
			RequestHash: requestHash,
		}
		if ct := capture.Header().Get("Content-Type"); ct != "" {
			record.Headers = map[string]string{"Content-Type": ct}
		}
		payload, err := json.Marshal(record)
		if err != nil {
			logger.Error("Failed to encode idempotency record", slog.String("error", err.Error()))
			return
		}
		if err := store.Set(ctx, key, string(payload), ttl); err != nil {
			logger.Error("Failed to persist idempotency record", slog.String("error", err.Error()))
		}
	}
}

func respondFromRecord(c *gin.Context, logger *slog.Logger, stored, requestHash string) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		logger.Error("Failed to decode idempotency record", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "corrupt idempotency record"})
		return
	}
	if record.RequestHash != requestHash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Idempotency-Key reused with a different request"})
		return
	}
	if record.InFlight {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a request with this Idempotency-Key is already in progress"})
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(record.Body)
	if err != nil {
		logger.Error("Failed to decode idempotent response body", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "corrupt idempotency record"})
		return
	}
	contentType := record.Headers["Content-Type"]
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Header(IdempotentReplayedHeader, "true")
	c.Data(record.Status, contentType, decoded)
	c.Abort()
}

func idempotencyScope(c *gin.Context) string {
	userID, _ := GetUserIDFromContext(c)
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	return strings.Join([]string{userID, c.Request.Method, path}, "|")
}

type bodyCapture struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCapture) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
