package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shaanrockz/PySyft/pkg/messaging"
)

// ErrRateLimited is returned to callers that exceed the inbound rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// HandlerFunc processes one decoded message and produces the reply.
type HandlerFunc func(ctx context.Context, msg messaging.Message) (messaging.Message, error)

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one. The first middleware is outermost:
// Chain(a, b)(h) runs a's before-code, then b's, then h.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// LoggingMiddleware records every handled message with its outcome and
// duration.
func LoggingMiddleware(log *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
			start := time.Now()
			reply, err := next(ctx, msg)
			fields := []zap.Field{
				zap.Stringer("type", msg.Type()),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				log.Warn("message failed", append(fields, zap.Error(err))...)
			} else {
				log.Debug("message handled", fields...)
			}
			return reply, err
		}
	}
}

// RecoveryMiddleware converts a handler panic into an error reply so one bad
// operation cannot take the worker down.
func RecoveryMiddleware(log *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg messaging.Message) (reply messaging.Message, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("handler panic",
						zap.Stringer("type", msg.Type()),
						zap.Any("panic", r),
						zap.Stack("stack"))
					reply = nil
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(ctx, msg)
		}
	}
}

// RateLimitMiddleware rejects messages beyond r per second with bursts of up
// to burst.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg messaging.Message) (messaging.Message, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, msg)
		}
	}
}
