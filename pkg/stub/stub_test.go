package stub_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/goliatone/go-careerpath/pkg/contract"
	"github.com/goliatone/go-careerpath/pkg/predict"
	"github.com/goliatone/go-careerpath/pkg/stub"
	"github.com/goliatone/go-careerpath/pkg/testsupport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newStub(t *testing.T, options ...stub.Option) *httptest.Server {
	t.Helper()
	c, err := contract.Load(context.Background())
	require.NoError(t, err)
	handler, err := stub.New(c, options...)
	require.NoError(t, err)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func post(t *testing.T, url, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post(url+"/predict", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestStub_PredictsForValidProfile(t *testing.T) {
	server := newStub(t)
	raw, err := json.Marshal(testsupport.ValidProfile())
	require.NoError(t, err)

	status, body := post(t, server.URL, string(raw))
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Data Scientist", body["prediction"])
}

func TestStub_RejectsInvalidRequests(t *testing.T) {
	server := newStub(t)

	status, body := post(t, server.URL, "not json")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Request body must be a JSON object", body["error"])

	profile := testsupport.ValidProfile()
	delete(profile, "gpa")
	raw, err := json.Marshal(profile)
	require.NoError(t, err)

	status, body = post(t, server.URL, string(raw))
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body["error"], "Invalid profile")
	require.Contains(t, body["error"], "gpa")
}

func TestStub_PredictFailureIs500(t *testing.T) {
	server := newStub(t, stub.WithPredictFunc(func(map[string]string) (string, error) {
		return "", errors.New("model unavailable")
	}))
	raw, err := json.Marshal(testsupport.ValidProfile())
	require.NoError(t, err)

	status, body := post(t, server.URL, string(raw))
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "model unavailable", body["error"])
}

func TestStub_Health(t *testing.T) {
	server := newStub(t)
	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStub_ServesPredictClient(t *testing.T) {
	server := newStub(t)
	client, err := predict.New(server.URL)
	require.NoError(t, err)

	prediction, err := client.Predict(context.Background(), testsupport.ValidProfile())
	require.NoError(t, err)
	require.Equal(t, "Data Scientist", prediction)

	profile := testsupport.ValidProfile()
	profile["python"] = "Expert"
	_, err = client.Predict(context.Background(), profile)
	var rejection *predict.RejectionError
	require.ErrorAs(t, err, &rejection)
	require.Equal(t, http.StatusBadRequest, rejection.Status)
	require.Contains(t, predict.UserMessage(err), "python")
}

func TestNew_RequiresContract(t *testing.T) {
	_, err := stub.New(nil)
	require.Error(t, err)
}

func TestPredict_Rules(t *testing.T) {
	cases := []struct {
		name    string
		profile map[string]string
		want    string
	}{
		{
			name:    "research profile",
			profile: map[string]string{"researchExperience": "Yes", "gpa": "9.4", "interestedDomain": "Web"},
			want:    "Research Scientist",
		},
		{
			name:    "data without advanced python",
			profile: map[string]string{"interestedDomain": "Big Data", "python": "Beginner"},
			want:    "Data Analyst",
		},
		{
			name:    "database before data",
			profile: map[string]string{"interestedDomain": "Database Systems"},
			want:    "Database Administrator",
		},
		{
			name:    "concentration fallback",
			profile: map[string]string{"interestedDomain": "Fintech", "concentration": "Network Security"},
			want:    "Security Analyst",
		},
		{
			name:    "stated career",
			profile: map[string]string{"interestedDomain": "Fintech", "futureCareer": "Product Manager"},
			want:    "Product Manager",
		},
		{
			name:    "default",
			profile: map[string]string{},
			want:    stub.DefaultCareer,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := stub.Predict(tc.profile)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
