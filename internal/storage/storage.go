// Package storage defines the key-value store boundary and the adapter that
// normalizes its heterogeneous results for the rest of the application.
package storage

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Store is the external key-value boundary. Both operations are fallible and
// may suspend; raw selects scalar mode (value stored as-is) versus structured
// mode (value is a serialized record).
//
// Get returns nil for an absent key. Implementations are free to return
// either a bare value or an Envelope around it; callers go through Adapter,
// which unwraps both shapes.
type Store interface {
	Get(ctx context.Context, key string, raw bool) (any, error)
	Set(ctx context.Context, key string, value any, raw bool) error
}

// Envelope is the wrapped result shape some store implementations return.
type Envelope struct {
	Value any
}

// Adapter wraps a Store and converts its failures into absence. Callers of
// ReadValue/WriteValue never see a storage error; faults degrade to nil
// reads and dropped writes, logged for diagnostics.
type Adapter struct {
	store Store
	log   *zap.Logger
}

// NewAdapter constructs an Adapter. A nil logger disables logging.
func NewAdapter(store Store, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{store: store, log: log}
}

// ReadValue reads key from the store. Absent keys, store errors and falsy
// results all come back as nil. Envelope results are unwrapped to their
// payload.
func (a *Adapter) ReadValue(ctx context.Context, key string, raw bool) any {
	res, err := a.store.Get(ctx, key, raw)
	if err != nil {
		a.log.Debug("storage get failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	switch v := res.(type) {
	case nil:
		return nil
	case Envelope:
		return v.Value
	case *Envelope:
		if v == nil {
			return nil
		}
		return v.Value
	default:
		return res
	}
}

// WriteValue writes key to the store, best effort. Failures are logged and
// swallowed; the caller proceeds as if the write succeeded.
func (a *Adapter) WriteValue(ctx context.Context, key string, value any, raw bool) {
	if err := a.store.Set(ctx, key, value, raw); err != nil {
		a.log.Error("storage set failed", zap.String("key", key), zap.Error(err))
	}
}

// Decode normalizes a value read back from the store. The store may hand
// back either previously-decoded data or serialized text depending on the
// raw flag and the backend, so callers must not assume one or the other.
// Returns fallback when v is absent or cannot be decoded into T.
func Decode[T any](v any, fallback T) T {
	switch t := v.(type) {
	case nil:
		return fallback
	case T:
		return t
	case string:
		return decodeJSON([]byte(t), fallback)
	case []byte:
		return decodeJSON(t, fallback)
	default:
		return fallback
	}
}

func decodeJSON[T any](b []byte, fallback T) T {
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return fallback
	}
	return out
}

// Encode serializes a record for structured-mode storage. Records in this
// namespace are plain JSON; the empty string is returned on a marshal
// failure (which cannot happen for the domain types).
func Encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
