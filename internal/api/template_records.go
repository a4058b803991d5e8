package api

import (
	"context"
	"strings"
)

// TemplateRecord is a DNS record stored in a template.
type TemplateRecord struct {
	ID         int64  `json:"id"`
	TemplateID int64  `json:"template_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	TTL        int    `json:"ttl"`
	Priority   *int   `json:"priority"`
	Type       string `json:"type"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// TemplateRecordAttributes is the body of a template record create.
type TemplateRecordAttributes struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

// Template records cannot be updated in place.
func templateRecordsResource(template string) Resource[TemplateRecord] {
	return Resource[TemplateRecord]{
		Name: "template records",
		Path: resourcePathf("/templates/%s/records", template),
		Ops:  OpList | OpGet | OpCreate | OpDelete,
	}
}

func requireTemplate(accountID, template string) error {
	if strings.TrimSpace(accountID) == "" {
		return ErrMissingAccountID
	}
	if strings.TrimSpace(template) == "" {
		return ErrMissingResourceID
	}
	return nil
}

// ListTemplateRecords lists the records of a template.
func (s TemplateRecordsService) ListTemplateRecords(ctx context.Context, accountID, template string, opts *ListOptions) (*Response[[]TemplateRecord], error) {
	if err := requireTemplate(accountID, template); err != nil {
		return nil, err
	}
	return templateRecordsResource(template).List(ctx, s, accountID, opts)
}

// GetTemplateRecord fetches one record of a template.
func (s TemplateRecordsService) GetTemplateRecord(ctx context.Context, accountID, template, record string) (*Response[TemplateRecord], error) {
	if err := requireTemplate(accountID, template); err != nil {
		return nil, err
	}
	return templateRecordsResource(template).Get(ctx, s, accountID, record)
}

// CreateTemplateRecord adds a record to a template.
func (s TemplateRecordsService) CreateTemplateRecord(ctx context.Context, accountID, template string, attrs TemplateRecordAttributes) (*Response[TemplateRecord], error) {
	if err := requireTemplate(accountID, template); err != nil {
		return nil, err
	}
	return templateRecordsResource(template).Create(ctx, s, accountID, attrs)
}

// DeleteTemplateRecord removes a record from a template.
func (s TemplateRecordsService) DeleteTemplateRecord(ctx context.Context, accountID, template, record string) (*Response[Empty], error) {
	if err := requireTemplate(accountID, template); err != nil {
		return nil, err
	}
	return templateRecordsResource(template).Delete(ctx, s, accountID, record)
}
