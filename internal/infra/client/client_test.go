package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/client"
	"github.com/boddenberg/taskflow-bfa-go/internal/infra/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T, h http.Handler, tokens *client.TokenSigner) *client.Upstream {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	cb := resilience.NewCircuitBreaker(t.Name(), client.IsBenign)
	return client.NewUpstream(srv.Client(), srv.URL+"/", cb, cfg, tokens)
}

func TestIdentityClient_GetUser(t *testing.T) {
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user", r.URL.Path)
		assert.Equal(t, "u-1", r.URL.Query().Get("id"))
		_, _ = io.WriteString(w, `{"_id":"u-1","ReferenceID":"REF-9","Role":"Territory Sales Manager","Manager":"M-1","Firstname":"Lea"}`)
	}), nil)

	p, err := client.NewIdentityClient(up).GetUser(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "REF-9", p.ReferenceID)
	assert.Equal(t, domain.RoleTerritorySalesManager, p.Role)
	assert.Equal(t, "M-1", p.ManagerID)
}

func TestIdentityClient_EnvelopedUser(t *testing.T) {
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"u-2","ReferenceID":"R","Role":"Manager"}}`)
	}), nil)

	p, err := client.NewIdentityClient(up).GetUser(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, p.Role)
}

func TestIdentityClient_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}), nil)

	_, err := client.NewIdentityClient(up).GetUser(context.Background(), "ghost")

	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRecordsClient_EnvelopeAndBareArray(t *testing.T) {
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case client.AccountsPath:
			_, _ = io.WriteString(w, `{"success":true,"data":[{"companyname":"Acme","referenceid":"A","date_created":"2024-01-02"}]}`)
		case client.ActivitiesPath:
			_, _ = io.WriteString(w, `[{"companyname":"Acme","callback":null,"quotationamount":"1,250.50"}]`)
		case client.RosterPath:
			_, _ = io.WriteString(w, `{"data":null}`)
		default:
			http.NotFound(w, r)
		}
	}), nil)
	c := client.NewRecordsClient(up)
	ctx := context.Background()

	accounts, err := c.FetchAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "2024-01-02", accounts[0].DateCreated.Day())

	activities, err := c.FetchActivities(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.False(t, activities[0].Callback.Valid)
	assert.Equal(t, "1250.50", activities[0].QuotationAmount.StringFixed(2))

	roster, err := c.FetchRoster(ctx)
	require.NoError(t, err)
	assert.NotNil(t, roster)
	assert.Empty(t, roster)
}

func TestRecordsClient_SuccessFalse(t *testing.T) {
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"db down"}`)
	}), nil)

	_, err := client.NewRecordsClient(up).FetchAccounts(context.Background())

	var ext *domain.ErrExternalService
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, "accounts", ext.Service)
	assert.Contains(t, err.Error(), "db down")
}

func TestRecordsClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}), nil)

	got, err := client.NewRecordsClient(up).FetchActivities(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRecordsClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}), nil)

	_, err := client.NewRecordsClient(up).FetchAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestUpstream_CircuitOpens(t *testing.T) {
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), nil)
	c := client.NewRecordsClient(up)

	var err error
	for i := 0; i < 6; i++ {
		_, err = c.FetchAccounts(context.Background())
	}

	var open *domain.ErrCircuitOpen
	assert.ErrorAs(t, err, &open)
}

func TestUpstream_SignsRequests(t *testing.T) {
	signer := client.NewTokenSigner("s3cret", "taskflow-bfa")
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		claims, err := signer.Verify(strings.TrimPrefix(auth, "Bearer "))
		if !assert.NoError(t, err) || !assert.True(t, strings.HasPrefix(auth, "Bearer ")) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "roster", claims.Audience[0])
		_, _ = io.WriteString(w, `[]`)
	}), signer)

	_, err := client.NewRecordsClient(up).FetchRoster(context.Background())
	assert.NoError(t, err)
}

func TestNewTokenSigner_EmptyKeyDisables(t *testing.T) {
	assert.Nil(t, client.NewTokenSigner("", "x"))

	other := client.NewTokenSigner("other", "taskflow-bfa")
	tok, err := client.NewTokenSigner("key", "taskflow-bfa").Sign("identity")
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.Error(t, err)
}

func TestMutationClient(t *testing.T) {
	type captured struct {
		method, path string
		body         map[string]any
	}
	seen := make(chan captured, 1)
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{method: r.Method, path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&c.body)
		seen <- c
		if c.body["id"] == "reject" {
			_, _ = io.WriteString(w, `{"success":false,"message":"locked"}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true,"message":"ok"}`)
	}), nil)
	c := client.NewMutationClient(up)
	ctx := context.Background()

	res, err := c.CreateActivity(ctx, &domain.ActivityInput{CompanyName: "Acme", ReferenceID: "A"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	last := <-seen
	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, client.CreateActivityPath, last.path)
	assert.Equal(t, "Acme", last.body["companyname"])

	_, err = c.UpdateActivityStatus(ctx, "act-1", &domain.StatusChange{ActivityStatus: "Hot"})
	require.NoError(t, err)
	last = <-seen
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "act-1", last.body["id"])
	assert.Equal(t, "Hot", last.body["activitystatus"])

	_, err = c.DeleteActivity(ctx, "act-1")
	require.NoError(t, err)
	last = <-seen
	assert.Equal(t, http.MethodDelete, last.method)

	_, err = c.DeleteActivity(ctx, "reject")
	<-seen
	var ext *domain.ErrExternalService
	require.True(t, errors.As(err, &ext))
	assert.Contains(t, err.Error(), "locked")
}

func TestMutationClient_EmptyBodyIsSuccess(t *testing.T) {
	up := newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), nil)

	res, err := client.NewMutationClient(up).DeleteActivity(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, res.Success)
}
