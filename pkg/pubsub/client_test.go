package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline-backend/pkg/config"
)

func TestResourceName(t *testing.T) {
	c := &Client{projectID: "ledgerline-prod"}

	cases := []struct {
		name       string
		collection string
		input      string
		want       string
	}{
		{"short subscription id", "subscriptions", "analytics-events-sub", "projects/ledgerline-prod/subscriptions/analytics-events-sub"},
		{"short topic id", "topics", "analytics-events", "projects/ledgerline-prod/topics/analytics-events"},
		{"full name passes through", "subscriptions", "projects/other/subscriptions/analytics-events-sub", "projects/other/subscriptions/analytics-events-sub"},
		{"whitespace trimmed", "topics", "  analytics-events  ", "projects/ledgerline-prod/topics/analytics-events"},
		{"empty name", "topics", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, c.resourceName(tc.collection, tc.input))
		})
	}
}

func TestResourceNameRequiresProject(t *testing.T) {
	c := &Client{}
	require.Empty(t, c.resourceName("topics", "analytics-events"))
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	require.Nil(t, c.Subscription("analytics-events-sub"))
	require.Nil(t, c.Publisher("analytics-events"))
	require.Error(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
}

func TestPingRequiresSubscriptionName(t *testing.T) {
	c := &Client{projectID: "ledgerline-prod", cfg: config.PubSubConfig{}}
	require.ErrorIs(t, c.Ping(context.Background()), errNoSubscriptions)
}
