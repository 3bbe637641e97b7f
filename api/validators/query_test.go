package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    int
		wantErr string
	}{
		{name: "absent uses default", url: "/?other=1", want: 25},
		{name: "blank uses default", url: "/?limit=%20", want: 25},
		{name: "parses value", url: "/?limit=75", want: 75},
		{name: "non-numeric", url: "/?limit=abc", wantErr: "must be numeric"},
		{name: "below min", url: "/?limit=0", wantErr: "out of range"},
		{name: "above max", url: "/?limit=101", wantErr: "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			got, err := ParseQueryInt(req, "limit", 25, 1, 100)
			if tt.wantErr != "" {
				require.Error(t, err)
				typed := pkgerrors.As(err)
				require.NotNil(t, typed)
				assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
				assert.Contains(t, typed.Message(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseQueryBool(t *testing.T) {
	req := httptest.NewRequest("GET", "/?active=true", nil)
	got, err := ParseQueryBool(req, "active", false)
	require.NoError(t, err)
	assert.True(t, got)

	req = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryBool(req, "active", true)
	require.NoError(t, err)
	assert.True(t, got)

	req = httptest.NewRequest("GET", "/?active=maybe", nil)
	_, err = ParseQueryBool(req, "active", false)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
