package obs

import (
	"context"
	"sort"
	"sync"
)

type routePatternKey struct{}

type annotationsKey struct{}

// annotations collects per-request log fields set by handlers further down
// the chain.
type annotations struct {
	mu     sync.Mutex
	fields map[string]string
}

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the stored route pattern or "".
func RoutePatternFromContext(ctx context.Context) string {
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}

// WithAnnotations installs an empty annotation set on ctx.
func WithAnnotations(ctx context.Context) context.Context {
	return context.WithValue(ctx, annotationsKey{}, &annotations{fields: map[string]string{}})
}

// Annotate attaches a field to the request log line. It is a no-op when the
// request is not wrapped by RequestLogger.
func Annotate(ctx context.Context, key, value string) {
	a, ok := ctx.Value(annotationsKey{}).(*annotations)
	if !ok || key == "" {
		return
	}
	a.mu.Lock()
	a.fields[key] = value
	a.mu.Unlock()
}

// annotationsOf returns the annotations as sorted key/value pairs.
func annotationsOf(ctx context.Context) [][2]string {
	a, ok := ctx.Value(annotationsKey{}).(*annotations)
	if !ok {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][2]string, 0, len(a.fields))
	for k, v := range a.fields {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
