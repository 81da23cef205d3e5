package httpclient

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zhangrongwu/windsurf-shop-cart/pkg/errors"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredNotFound(t *testing.T) {
	resp := fakeResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"product p1 not found"}}`)

	err := ParseResponseError(resp, "catalog")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestParseResponseError_StructuredBadRequest(t *testing.T) {
	resp := fakeResponse(http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"bad id"}}`)

	err := ParseResponseError(resp, "catalog")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "catalog")
}

func TestParseResponseError_Unstructured(t *testing.T) {
	resp := fakeResponse(http.StatusBadGateway, "upstream exploded")

	err := ParseResponseError(resp, "catalog")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestParseResponseError_PreservesCustomCode(t *testing.T) {
	resp := fakeResponse(http.StatusUnprocessableEntity, `{"error":{"code":"OUT_OF_STOCK","message":"no inventory"}}`)

	err := ParseResponseError(resp, "catalog")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "OUT_OF_STOCK", appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
}
