package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindServerError},
		{http.StatusBadGateway, KindServerError},
		{http.StatusBadRequest, KindRequestFailed},
		{http.StatusConflict, KindRequestFailed},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, kindForStatus(c.status), "status %d", c.status)
	}
}

func TestRetryableKinds(t *testing.T) {
	retryable := []ErrorKind{KindNetworkError, KindServerError, KindRateLimited}
	for _, k := range retryable {
		assert.True(t, (&Error{Kind: k}).Retryable(), string(k))
	}

	terminal := []ErrorKind{KindUnauthorized, KindForbidden, KindNotFound, KindRequestFailed}
	for _, k := range terminal {
		assert.False(t, (&Error{Kind: k}).Retryable(), string(k))
	}
}

func TestAsErrorOnForeignError(t *testing.T) {
	_, ok := AsError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestStatusErrorFallbackMessage(t *testing.T) {
	err := statusError(http.StatusInternalServerError, "", "could not load chats")
	assert.Equal(t, "could not load chats", err.Message)

	err = statusError(http.StatusInternalServerError, "db unavailable", "could not load chats")
	assert.Equal(t, "db unavailable", err.Message)
}
