package api

import (
	"context"
	"net/http"
	"strings"
)

// Template is a reusable set of DNS records.
type Template struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TemplateAttributes is the body of a template create or update. A nil
// ShortName or Description is left out; a pointer to "" clears the field.
type TemplateAttributes struct {
	Name        string  `json:"name,omitempty"`
	ShortName   *string `json:"short_name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// String returns a pointer to v, for the optional attribute fields.
func String(v string) *string { return &v }

var templatesResource = Resource[Template]{
	Name: "templates",
	Path: "/templates",
	Ops:  OpAll,
}

// ListTemplates lists the templates in the account.
func (s TemplatesService) ListTemplates(ctx context.Context, accountID string, opts *ListOptions) (*Response[[]Template], error) {
	return templatesResource.List(ctx, s, accountID, opts)
}

// GetTemplate fetches a template by ID or short name.
func (s TemplatesService) GetTemplate(ctx context.Context, accountID, template string) (*Response[Template], error) {
	return templatesResource.Get(ctx, s, accountID, template)
}

// CreateTemplate creates a template.
func (s TemplatesService) CreateTemplate(ctx context.Context, accountID string, attrs TemplateAttributes) (*Response[Template], error) {
	return templatesResource.Create(ctx, s, accountID, attrs)
}

// UpdateTemplate changes the given attributes of a template.
func (s TemplatesService) UpdateTemplate(ctx context.Context, accountID, template string, attrs TemplateAttributes) (*Response[Template], error) {
	return templatesResource.Update(ctx, s, accountID, template, attrs)
}

// DeleteTemplate deletes a template.
func (s TemplatesService) DeleteTemplate(ctx context.Context, accountID, template string) (*Response[Empty], error) {
	return templatesResource.Delete(ctx, s, accountID, template)
}

// ApplyTemplate adds the records of a template to a domain.
func (s TemplatesService) ApplyTemplate(ctx context.Context, accountID, domain, template string) (*Response[Empty], error) {
	return applyTemplate(ctx, s, accountID, domain, template)
}

func applyTemplate(ctx context.Context, r Requester, accountID, domain, template string) (*Response[Empty], error) {
	if strings.TrimSpace(domain) == "" || strings.TrimSpace(template) == "" {
		if strings.TrimSpace(accountID) == "" {
			return nil, ErrMissingAccountID
		}
		return nil, ErrMissingResourceID
	}
	url, err := r.accountURL(accountID, resourcePathf("/domains/%s/templates", domain), template, nil)
	if err != nil {
		return nil, err
	}
	return doEmpty(ctx, r, http.MethodPost, url, nil)
}
