package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoami(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantAccount bool
		wantUser    bool
	}{
		{
			name:        "account token",
			body:        `{"data": {"user": null, "account": {"id": 1010, "email": "example-account@example.com", "plan_identifier": "dnsimple-professional", "created_at": "2014-05-19T14:20:32Z", "updated_at": "2016-01-11T08:48:47Z"}}}`,
			wantAccount: true,
		},
		{
			name:     "user token",
			body:     `{"data": {"user": {"id": 1, "email": "example-user@example.com", "created_at": "2015-09-18T23:04:37Z", "updated_at": "2016-06-09T20:03:39Z"}, "account": null}}`,
			wantUser: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, requests := fixtureServer(t, http.StatusOK, tt.body)
			client := newTestClient(server.URL, "t")

			resp, err := client.Identity().Whoami(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "/v2/whoami", (*requests)[0].Path)
			assert.Equal(t, tt.wantAccount, resp.Data.Account != nil)
			assert.Equal(t, tt.wantUser, resp.Data.User != nil)
		})
	}
}

func TestWhoami_Unauthorized(t *testing.T) {
	server, _ := fixtureServer(t, http.StatusUnauthorized, `{"message": "Authentication failed"}`)
	client := newTestClient(server.URL, "bad")

	_, err := client.Identity().Whoami(context.Background())
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, ErrUnauthorized, StructuredErrorFromError(err).Code)
}
