package api

import (
	"context"
	"net/http"
	"strings"
)

// Operation is a bit set of the operations a resource supports.
type Operation uint8

const (
	OpList Operation = 1 << iota
	OpGet
	OpCreate
	OpUpdate
	OpDelete

	OpAll = OpList | OpGet | OpCreate | OpUpdate | OpDelete
)

// Has reports whether every operation in op is in o.
func (o Operation) Has(op Operation) bool {
	return o&op == op
}

func (o Operation) String() string {
	var names []string
	for _, entry := range []struct {
		op   Operation
		name string
	}{
		{OpList, "list"},
		{OpGet, "get"},
		{OpCreate, "create"},
		{OpUpdate, "update"},
		{OpDelete, "delete"},
	} {
		if o.Has(entry.op) {
			names = append(names, entry.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Resource binds an account scoped collection of T to the operations it
// supports. Path is relative to /v2/{account} and already escaped.
//
// List parses a collection envelope, Get/Create/Update a single entity and
// Delete an empty body. Create sends POST and Update sends PATCH.
type Resource[T any] struct {
	Name string
	Path string
	Ops  Operation
}

func (res Resource[T]) check(op Operation, accountID string, resourceID *string) error {
	if !res.Ops.Has(op) {
		return &UnsupportedOperationError{Resource: res.Name, Operation: op}
	}
	if strings.TrimSpace(accountID) == "" {
		return ErrMissingAccountID
	}
	if resourceID != nil && strings.TrimSpace(*resourceID) == "" {
		return ErrMissingResourceID
	}
	return nil
}

func (res Resource[T]) List(ctx context.Context, r Requester, accountID string, opts *ListOptions) (*Response[[]T], error) {
	if err := res.check(OpList, accountID, nil); err != nil {
		return nil, err
	}
	url, err := r.accountURL(accountID, res.Path, "", opts)
	if err != nil {
		return nil, err
	}
	raw, err := r.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return parseCollection[T](raw)
}

func (res Resource[T]) Get(ctx context.Context, r Requester, accountID, id string) (*Response[T], error) {
	if err := res.check(OpGet, accountID, &id); err != nil {
		return nil, err
	}
	return res.single(ctx, r, http.MethodGet, accountID, id, nil)
}

func (res Resource[T]) Create(ctx context.Context, r Requester, accountID string, attrs any) (*Response[T], error) {
	if err := res.check(OpCreate, accountID, nil); err != nil {
		return nil, err
	}
	return res.single(ctx, r, http.MethodPost, accountID, "", attrs)
}

func (res Resource[T]) Update(ctx context.Context, r Requester, accountID, id string, attrs any) (*Response[T], error) {
	if err := res.check(OpUpdate, accountID, &id); err != nil {
		return nil, err
	}
	return res.single(ctx, r, http.MethodPatch, accountID, id, attrs)
}

func (res Resource[T]) Delete(ctx context.Context, r Requester, accountID, id string) (*Response[Empty], error) {
	if err := res.check(OpDelete, accountID, &id); err != nil {
		return nil, err
	}
	url, err := r.accountURL(accountID, res.Path, id, nil)
	if err != nil {
		return nil, err
	}
	return doEmpty(ctx, r, http.MethodDelete, url, nil)
}

func (res Resource[T]) single(ctx context.Context, r Requester, method, accountID, id string, body any) (*Response[T], error) {
	url, err := r.accountURL(accountID, res.Path, id, nil)
	if err != nil {
		return nil, err
	}
	raw, err := r.do(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	return parseSingle[T](raw)
}

// doEmpty performs a request whose success response has no payload.
func doEmpty(ctx context.Context, r HTTPExecutor, method, url string, body any) (*Response[Empty], error) {
	raw, err := r.do(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	return parseEmpty(raw), nil
}
