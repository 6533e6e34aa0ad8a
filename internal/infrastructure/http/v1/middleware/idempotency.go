package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	appctx "github.com/harpreet-2146/FM-demo-sub001/internal/core/context"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/idempotency"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"
const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const idempotencyFinishTimeout = 5 * time.Second

// Idempotency middleware replays the stored response of a repeated
// mutating request carrying an X-Idempotency-Key header. It runs after Auth so
// keys are scoped per user.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || !mutating(c.Request.Method) {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
		if err != nil {
			_ = c.Error(apperror.NewInvalidArgument("unreadable request body").WithCause(err))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewInvalidArgument("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		req := idempotency.Request{
			Key:         key,
			UserID:      appctx.GetUserID(ctx),
			Operation:   c.Request.Method + " " + c.FullPath(),
			RequestHash: idempotency.HashBody(body),
		}

		replay, err := store.Acquire(ctx, req)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec

		finished := false
		defer func() {
			// A panic unwinds past finish; free the key for a retry.
			if !finished {
				release(ctx, store, key)
			}
		}()

		c.Next()

		// Render errors here so the stored body is the one the client sees.
		if len(c.Errors) > 0 && !rec.Written() {
			c.JSON(renderError(c, c.Errors.Last().Err))
		}
		finish(ctx, store, key, rec)
		finished = true
	}
}

func finish(ctx context.Context, store idempotency.Store, key string, rec *recorder) {
	status, cache := idempotency.StatusFor(rec.Status())
	if !cache {
		release(ctx, store, key)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyFinishTimeout)
	defer cancel()

	resp := idempotency.Replay{
		StatusCode:  rec.Status(),
		ContentType: rec.Header().Get("Content-Type"),
		Body:        rec.body.Bytes(),
	}
	if err := store.Complete(ctx, key, status, resp); err != nil {
		logger.Warn(ctx, "idempotency complete failed", "key", key, "error", err)
	}
}

func release(ctx context.Context, store idempotency.Store, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyFinishTimeout)
	defer cancel()

	if err := store.Release(ctx, key); err != nil {
		logger.Warn(ctx, "idempotency release failed", "key", key, "error", err)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// recorder tees the response body so it can be stored for replay.
type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
