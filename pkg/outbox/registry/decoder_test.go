package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

func TestDecoderRegistryDecodesByTypeAndVersion(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.AnalyticsEventImportCompleted, 1, func(payload json.RawMessage) (any, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"filename":"march.csv"}`)
	output, err := reg.Decode(enums.AnalyticsEventImportCompleted, 1, input)
	require.NoError(t, err)
	decoded, ok := output.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "march.csv", decoded["filename"])

	_, err = reg.Decode(enums.AnalyticsEventImportFailed, 1, input)
	assert.ErrorContains(t, err, "no decoder")

	_, err = reg.Decode(enums.AnalyticsEventImportCompleted, 2, input)
	assert.ErrorContains(t, err, "v2")
}

func TestDecoderRegistryIgnoresNilDecoder(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.AnalyticsEventImportCompleted, 1, nil)

	_, err := reg.Decode(enums.AnalyticsEventImportCompleted, 1, json.RawMessage(`{}`))
	assert.Error(t, err)
}
