// Package service holds the business logic behind the HTTP handlers:
// account registration and login, bearer token resolution, and the owner
// scoped project and task operations with their listing cache.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/taskflow-api/internal/cache"
	"github.com/iliyamo/taskflow-api/internal/queue"
	"github.com/iliyamo/taskflow-api/internal/telemetry"
)

// Paging limits applied to list requests.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// DefaultCacheTTL is used when Deps.CacheTTL is not set.
const DefaultCacheTTL = 300 * time.Second

// Logger is the subset of echo's leveled logger the services use.
type Logger interface {
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// EventPublisher delivers activity events. Implementations live in
// internal/queue.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// Deps are the collaborators shared by the project and task services.
type Deps struct {
	Cache    cache.Cache
	Events   EventPublisher
	Log      Logger
	CacheTTL time.Duration
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Events == nil {
		d.Events = queue.Noop{}
	}
	if d.Log == nil {
		d.Log = discard{}
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = DefaultCacheTTL
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type discard struct{}

func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Listing is one serialized page of a list operation. Body is the JSON
// array exactly as returned to the client; Cached reports whether it came
// from the cache.
type Listing struct {
	Body   json.RawMessage
	Cached bool
}

// Page normalizes skip and limit: negative skip becomes 0, a non-positive
// limit becomes DefaultLimit and anything above MaxLimit is capped.
func Page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return skip, limit
}

// Cache key namespaces.
const (
	kindProjects = "projects"
	kindTasks    = "tasks"
)

// ownerPrefix is the namespace holding every cached page of kind for one
// owner. The trailing colon keeps user 1 from matching user 12.
func ownerPrefix(kind string, ownerID uint64) string {
	return kind + ":user:" + strconv.FormatUint(ownerID, 10) + ":"
}

// InvalidateOwner drops every cached project and task page of one owner.
// It serves writers that bypass the services, such as the seeder.
func InvalidateOwner(ctx context.Context, c cache.Cache, ownerID uint64) error {
	var errs []error
	for _, kind := range []string{kindProjects, kindTasks} {
		if err := c.DeleteByPrefix(ctx, ownerPrefix(kind, ownerID)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func listKey(kind string, ownerID uint64, skip, limit int) string {
	return ownerPrefix(kind, ownerID) + strconv.Itoa(skip) + ":" + strconv.Itoa(limit)
}

// readThrough serves key from the cache or calls load, stores its JSON
// encoding and returns it. An unavailable cache behaves as a miss.
func readThrough[T any](ctx context.Context, d Deps, key string, load func(context.Context) ([]T, error)) (Listing, error) {
	span := trace.SpanFromContext(ctx)

	res := d.Cache.Get(ctx, key)
	switch res.Status {
	case cache.Hit:
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return Listing{Body: res.Value, Cached: true}, nil
	case cache.Unavailable:
		d.Log.Warnf("cache get %s: %v", key, res.Err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	items, err := load(ctx)
	if err != nil {
		return Listing{}, err
	}
	body, err := json.Marshal(items)
	if err != nil {
		return Listing{}, fmt.Errorf("encode listing: %w", err)
	}
	if err := d.Cache.Set(ctx, key, body, d.CacheTTL); err != nil {
		d.Log.Warnf("cache set %s: %v", key, err)
	}
	return Listing{Body: body}, nil
}

// invalidate drops every cached page under the given prefixes. Failures are
// logged; the write that triggered them has already been committed.
func invalidate(ctx context.Context, d Deps, prefixes ...string) {
	for _, p := range prefixes {
		if err := d.Cache.DeleteByPrefix(ctx, p); err != nil {
			if errors.Is(err, cache.ErrUnavailable) {
				d.Log.Warnf("cache invalidate %s: %v", p, err)
				continue
			}
			d.Log.Errorf("cache invalidate %s: %v", p, err)
		}
	}
}

func publish(ctx context.Context, d Deps, ev queue.ActivityEvent) {
	ev.OccurredAt = d.Now().UTC()
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.Log.Warnf("publish %s %s %d: %v", ev.Entity, ev.Action, ev.EntityID, err)
	}
}

func startSpan(ctx context.Context, name string, ownerID uint64) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name,
		trace.WithAttributes(attribute.Int64("owner.id", int64(ownerID))))
}
