package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Error string `json:"error"`
}

func newTestClient(t *testing.T) *resty.Client {
	t.Helper()
	srv := newTestServer(t, testConfig(t), newMemStorage())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return resty.New().SetBaseURL(ts.URL)
}

func TestGuestbookOverHTTP(t *testing.T) {
	client := newTestClient(t)

	var created GuestbookEntry
	resp, err := client.R().
		SetBody(map[string]string{"name": "Ada", "message": "First!", "signature": pngDataURL(tinyPNG)}).
		SetResult(&created).
		Post("/api/guestbook")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	assert.Equal(t, int64(1), created.ID)
	assert.NotEmpty(t, resp.Header().Get(requestIDHeader))

	_, err = client.R().
		SetBody(map[string]string{"name": "Grace", "message": "Second"}).
		Post("/api/guestbook")
	require.NoError(t, err)

	var listed []GuestbookEntry
	resp, err = client.R().SetResult(&listed).Get("/api/guestbook")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, listed, 2)
	assert.Equal(t, "Grace", listed[0].Name)
	assert.Nil(t, listed[0].Signature)
	assert.Equal(t, created.ID, listed[1].ID)

	var fetched GuestbookEntry
	resp, err = client.R().SetResult(&fetched).Get("/api/guestbook/" + strconv.FormatInt(created.ID, 10))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, created.Message, fetched.Message)
	require.NotNil(t, fetched.Signature)

	resp, err = client.R().Get("/api/guestbook/1/signature")
	require.NoError(t, err)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, tinyPNG, resp.Body())
}

func TestGuestbookErrorsOverHTTP(t *testing.T) {
	client := newTestClient(t)

	var apiErr apiError
	resp, err := client.R().
		SetBody(map[string]string{"name": "  ", "message": "hi"}).
		SetError(&apiErr).
		Post("/api/guestbook")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	assert.Equal(t, "name must not be blank", apiErr.Error)

	apiErr = apiError{}
	resp, err = client.R().SetError(&apiErr).Get("/api/guestbook/42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
	assert.Equal(t, "Entry not found", apiErr.Error)
}
