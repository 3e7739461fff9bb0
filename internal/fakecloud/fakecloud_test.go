package fakecloud

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthsc/gigaset-elements-api/internal/endpoint"
	"github.com/matthsc/gigaset-elements-api/internal/model"
	"github.com/matthsc/gigaset-elements-api/internal/transport"
)

func newClient(t *testing.T) (*Server, *transport.Client) {
	t.Helper()
	s := New("user@example.com", "secret")
	t.Cleanup(s.Close)
	c, err := transport.New(transport.WithHTTPClient(s.Client()))
	require.NoError(t, err)
	return s, c
}

func login(t *testing.T, c *transport.Client, password string) error {
	t.Helper()
	form := url.Values{"email": {"user@example.com"}, "password": {password}}
	if err := c.Post(context.Background(), endpoint.Login, transport.Form(form), nil); err != nil {
		return err
	}
	return c.Get(context.Background(), endpoint.Auth, nil)
}

func statusOf(err error) int {
	var e *transport.EndpointError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	s, c := newClient(t)
	ctx := context.Background()

	var bs []model.BaseStation
	err := c.Get(ctx, endpoint.BaseStations, &bs)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	require.NoError(t, login(t, c, "secret"))
	require.NoError(t, c.Get(ctx, endpoint.BaseStations, &bs))
	assert.Len(t, bs, 1)

	s.Expire()
	err = c.Get(ctx, endpoint.BaseStations, &bs)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestAuthIssuesFreshSession(t *testing.T) {
	_, c := newClient(t)
	require.NoError(t, login(t, c, "secret"))

	u, err := url.Parse(endpoint.BaseStations)
	require.NoError(t, err)
	first := sessionValue(c, u)
	_, err = uuid.Parse(first)
	require.NoError(t, err, "session token %q", first)

	require.NoError(t, login(t, c, "secret"))
	assert.NotEqual(t, first, sessionValue(c, u))
}

func sessionValue(c *transport.Client, u *url.URL) string {
	for _, ck := range c.Jar().Cookies(u) {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	return ""
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, c := newClient(t)
	err := login(t, c, "wrong")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestStatusIsPublic(t *testing.T) {
	s, c := newClient(t)
	s.SetMaintenance(true)

	var st struct {
		IsMaintenance bool `json:"isMaintenance"`
	}
	require.NoError(t, c.Get(context.Background(), endpoint.Status, &st))
	assert.True(t, st.IsMaintenance)
	assert.Equal(t, 1, s.Count(endpoint.Status))
}

func TestEventsWindowAndLimit(t *testing.T) {
	s, c := newClient(t)
	require.NoError(t, login(t, c, "secret"))

	q := url.Values{
		endpoint.ParamFrom:  {"1546300800000"},
		endpoint.ParamTo:    {"1546387200000"},
		endpoint.ParamLimit: {"3"},
	}
	var page model.EventPage
	require.NoError(t, c.Get(context.Background(), endpoint.Events+"?"+q.Encode(), &page))
	require.Len(t, page.Events, 3)
	assert.Equal(t, "e10", page.Events[0].ID)

	queries := s.EventQueries()
	require.Len(t, queries, 1)
	assert.Equal(t, "3", queries[0].Get(endpoint.ParamLimit))
}

func TestFailNext(t *testing.T) {
	s, c := newClient(t)
	s.FailNext(endpoint.Status, http.StatusBadGateway)

	err := c.Get(context.Background(), endpoint.Status, nil)
	assert.Equal(t, http.StatusBadGateway, statusOf(err))
	assert.NoError(t, c.Get(context.Background(), endpoint.Status, nil))
}

func TestCommand(t *testing.T) {
	s, c := newClient(t)
	require.NoError(t, login(t, c, "secret"))

	require.NoError(t, c.Post(context.Background(), endpoint.Command("BS1", "100b2"), transport.JSON(model.CommandOn), nil))
	assert.Equal(t, []Command{{BaseStationID: "BS1", EndnodeID: "100b2", Name: "on"}}, s.Commands())
}
