package api

// Service accessors group Client methods by resource family.

type TemplatesService struct{ *Client }

type TemplateRecordsService struct{ *Client }

type DomainsService struct{ *Client }

type IdentityService struct{ *Client }

func (c *Client) Templates() TemplatesService {
	return TemplatesService{c}
}

func (c *Client) TemplateRecords() TemplateRecordsService {
	return TemplateRecordsService{c}
}

func (c *Client) Domains() DomainsService {
	return DomainsService{c}
}

func (c *Client) Identity() IdentityService {
	return IdentityService{c}
}
