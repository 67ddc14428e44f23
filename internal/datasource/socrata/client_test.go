package socrata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/datasource/httpds"
)

func TestClient_Get(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery url.Values
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotToken = r.Header.Get("X-App-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"unique_key":"1","complaint_type":"Noise"},{"unique_key":"2"}]`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, AppToken: "secret", HTTP: httpds.Config{Timeout: time.Second}})
	require.NoError(t, err)
	defer c.Close()

	recs, err := c.Get(context.Background(), "erm2-nwe9", 5000, "agency = 'NYPD'")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Noise", recs[0]["complaint_type"])

	assert.Equal(t, "/resource/erm2-nwe9.json", gotPath)
	assert.Equal(t, "5000", gotQuery.Get("$limit"))
	assert.Equal(t, "agency = 'NYPD'", gotQuery.Get("$where"))
	assert.Equal(t, ":id", gotQuery.Get("$order"))
	assert.Equal(t, "secret", gotToken)
}

func TestClient_Get_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorCode":"query.soql.no-such-column"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "erm2-nwe9", 10, "")
	var se *StatusError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Contains(t, se.Body, "no-such-column")
}

func TestClient_Get_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "erm2-nwe9", 10, "")
	require.Error(t, err)
}

func TestClient_Get_BadArgs(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "", 10, "")
	assert.Error(t, err)
	_, err = c.Get(context.Background(), "x", 0, "")
	assert.Error(t, err)
}

func TestNewClient_RejectsRelativeBase(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{BaseURL: "data.cityofnewyork.us"})
	assert.Error(t, err)
}

func TestResourceURL(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{BaseURL: "https://example.org/", Order: "created_date"})
	require.NoError(t, err)

	u, err := url.Parse(c.ResourceURL("abcd-1234", 7, "borough = 'QUEENS'"))
	require.NoError(t, err)
	assert.Equal(t, "example.org", u.Host)
	assert.Equal(t, "/resource/abcd-1234.json", u.Path)
	assert.Equal(t, "7", u.Query().Get("$limit"))
	assert.Equal(t, "borough = 'QUEENS'", u.Query().Get("$where"))
	assert.Equal(t, "created_date", u.Query().Get("$order"))
}
