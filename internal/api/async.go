package api

import "context"

// Result is the outcome of an asynchronous call: exactly one of Value and
// Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs fn in a goroutine and delivers its outcome on the returned
// channel, which receives exactly one value and is then closed.
//
//	ch := api.Async(ctx, func(ctx context.Context) (*api.Response[api.Template], error) {
//		return client.Templates().GetTemplate(ctx, "1010", "alpha")
//	})
//	res := <-ch
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn(ctx)
		if err != nil {
			var zero T
			ch <- Result[T]{Value: zero, Err: err}
			return
		}
		ch <- Result[T]{Value: v}
	}()
	return ch
}

// Await blocks until the result arrives or ctx is done.
func Await[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	select {
	case res := <-ch:
		return res.Value, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
