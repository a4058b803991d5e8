package api

import "context"

// Domain is a domain in the account.
type Domain struct {
	ID           int64  `json:"id"`
	AccountID    int64  `json:"account_id"`
	RegistrantID *int64 `json:"registrant_id"`
	Name         string `json:"name"`
	UnicodeName  string `json:"unicode_name"`
	State        string `json:"state"`
	AutoRenew    bool   `json:"auto_renew"`
	PrivateWhois bool   `json:"private_whois"`
	ExpiresAt    string `json:"expires_at"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// DomainAttributes is the body of a domain create.
type DomainAttributes struct {
	Name string `json:"name"`
}

var domainsResource = Resource[Domain]{
	Name: "domains",
	Path: "/domains",
	Ops:  OpList | OpGet | OpCreate | OpDelete,
}

func (s DomainsService) ListDomains(ctx context.Context, accountID string, opts *ListOptions) (*Response[[]Domain], error) {
	return domainsResource.List(ctx, s, accountID, opts)
}

func (s DomainsService) GetDomain(ctx context.Context, accountID, domain string) (*Response[Domain], error) {
	return domainsResource.Get(ctx, s, accountID, domain)
}

func (s DomainsService) CreateDomain(ctx context.Context, accountID string, attrs DomainAttributes) (*Response[Domain], error) {
	return domainsResource.Create(ctx, s, accountID, attrs)
}

func (s DomainsService) DeleteDomain(ctx context.Context, accountID, domain string) (*Response[Empty], error) {
	return domainsResource.Delete(ctx, s, accountID, domain)
}
