package api

import (
	"context"
	"net/http"
)

// Account is the account a token is scoped to.
type Account struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	PlanIdentifier string `json:"plan_identifier"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// User is the user a token belongs to.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Whoami describes the credentials of the client. Account tokens set
// Account, user tokens set User.
type Whoami struct {
	Account *Account `json:"account"`
	User    *User    `json:"user"`
}

// Whoami returns the identity behind the configured token.
func (s IdentityService) Whoami(ctx context.Context) (*Response[Whoami], error) {
	return whoami(ctx, s)
}

func whoami(ctx context.Context, r Requester) (*Response[Whoami], error) {
	raw, err := r.do(ctx, http.MethodGet, r.apiURL("/whoami"), nil)
	if err != nil {
		return nil, err
	}
	return parseSingle[Whoami](raw)
}
