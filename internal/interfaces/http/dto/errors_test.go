package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"ALREADY_REDEEMED", http.StatusConflict},
		{"INVALID_STATE", http.StatusConflict},
		{"INSUFFICIENT_CREDITS", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_BALANCE", http.StatusUnprocessableEntity},
		{"UNKNOWN_WORKFLOW_TYPE", http.StatusUnprocessableEntity},
		{"VOUCHER_EXHAUSTED", http.StatusUnprocessableEntity},
		{"INVALID_CODE", http.StatusNotFound},
		{"INVALID_PACKAGE", http.StatusBadRequest},
		{"GATEWAY_ERROR", http.StatusBadGateway},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"FORBIDDEN", http.StatusForbidden},
		{"SOMETHING_NOBODY_MAPPED", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestListRequestNormalize(t *testing.T) {
	req := ListRequest{}
	req.Normalize()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)

	req = ListRequest{Page: 3, PageSize: 50}
	req.Normalize()
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 50, req.PageSize)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	resp := NewErrorResponseWithDetails("INSUFFICIENT_CREDITS", "Not enough credits", "req-1", map[string]any{
		"required":  int64(40),
		"available": int64(15),
	})
	assert.False(t, resp.Success)
	assert.Equal(t, "INSUFFICIENT_CREDITS", resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Equal(t, int64(40), resp.Error.Details["required"])
}
