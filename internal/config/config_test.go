package config

import (
	"encoding/json"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nypd311/internal/query"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "https://data.cityofnewyork.us", c.Source.BaseURL)
	assert.Equal(t, "erm2-nwe9", c.Source.Dataset)
	assert.Equal(t, 5000, c.Source.PageLimit)
	assert.Equal(t, 120*time.Second, c.Source.Timeout.Duration)
	assert.Zero(t, c.Source.MaxRetries)
	assert.True(t, c.Transform.Dedupe)
	assert.Equal(t, []string{"created_date", "complaint_type"}, c.Transform.Required)
	assert.Equal(t, "csv", c.Output.Export)
	assert.Equal(t, "none", c.Metrics.Backend)
	assert.Empty(t, ValidateRun(withQuery(c)), "defaults plus a query and token should validate cleanly")
}

func withQuery(c Config) Config {
	c.Query = Query{Borough: "brooklyn", StartYear: 2019, EndYear: 2021}
	c.Source.AppToken = "token"
	return c
}

func TestRange(t *testing.T) {
	c := withQuery(Default())
	r, err := c.Range()
	require.NoError(t, err)
	assert.Equal(t, query.Range{Borough: query.Brooklyn, StartYear: 2019, EndYear: 2021, PageLimit: 5000}, r)

	c.Query.StartYear = 2026
	_, err = c.Range()
	assert.ErrorIs(t, err, query.ErrYearOutOfRange)

	c.Query.Borough = "jersey"
	_, err = c.Range()
	assert.ErrorIs(t, err, query.ErrUnknownBorough)
}

func TestDuration_TextEncoding(t *testing.T) {
	var s Source
	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"90s"}`), &s))
	assert.Equal(t, 90*time.Second, s.Timeout.Duration)

	b, err := json.Marshal(Source{Timeout: Duration{2 * time.Minute}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"timeout":"2m0s"`)

	require.NoError(t, toml.Unmarshal([]byte(`timeout = "45s"`), &s))
	assert.Equal(t, 45*time.Second, s.Timeout.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"timeout":"soon"}`), &s))
}
