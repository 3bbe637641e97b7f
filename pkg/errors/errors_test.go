package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.publicMsg, meta.PublicMessage)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing foo", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "foo"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "insert account")
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, CodeConflict, wrapped.Code())
	assert.Equal(t, "CONFLICT: insert account", wrapped.Error())
}

func TestWrapNilCauseDegradesToNew(t *testing.T) {
	err := Wrap(CodeNotFound, nil, "no such batch")
	assert.Equal(t, CodeNotFound, err.Code())
	assert.Nil(t, stdErrors.Unwrap(err))
}

func TestAsReturnsTypedError(t *testing.T) {
	typed := As(New(CodeNotFound, "no such batch"))
	require.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())

	assert.Nil(t, As(nil))
	assert.Nil(t, As(stdErrors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeConflict, "dup"))
	require.NotNil(t, As(wrapped))
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pq.Error{
		Code:       "23505",
		Constraint: "uniq_accounts_scope_name",
		Table:      "accounts",
		Message:    "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("create account: %w", pgErr), "account exists")

	dump := Dump(err)
	assert.Equal(t, CodeConflict, dump.Code)
	assert.Equal(t, "23505", dump.PGCode)
	assert.Equal(t, "uniq_accounts_scope_name", dump.PGConstraint)
	assert.Equal(t, "accounts", dump.PGTable)
	assert.Len(t, dump.Chain, 3)
	assert.Equal(t, "CONFLICT: account exists", dump.TopMessage)
}

func TestDumpNilError(t *testing.T) {
	assert.Zero(t, Dump(nil))
}
