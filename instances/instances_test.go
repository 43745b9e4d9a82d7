package instances_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openclusterclaw/clawctl/api"
	"github.com/openclusterclaw/clawctl/credentials"
	"github.com/openclusterclaw/clawctl/instances"
	"github.com/openclusterclaw/clawctl/internal/config"
	"github.com/openclusterclaw/clawctl/session"
)

func newInstancesClient(t *testing.T, mux *http.ServeMux) *instances.Client {
	t.Helper()
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)
	t.Setenv("CLAWCTL_API_URL", backend.URL)
	t.Setenv("CLAWCTL_API_PREFIX", "/api/v1")

	tokens, err := session.NewTokenManager(credentials.NewInMemoryRepo())
	require.NoError(t, err)
	require.NoError(t, tokens.SetTokens("AT1", "RT1", nil))

	apiClient, err := api.New(config.New(), tokens)
	require.NoError(t, err)
	client, err := instances.NewClient(apiClient)
	require.NoError(t, err)
	return client
}

func envelope(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "message": "success", "data": data})
}

func TestClient_List(t *testing.T) {
	mux := http.NewServeMux()
	var gotQuery map[string]string
	mux.HandleFunc("/api/v1/instances", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		envelope(w, instances.ListResult{
			Instances: []instances.Instance{{ID: "i1", Name: "claw-1", Status: instances.StatusRunning}},
			Total:     1, Page: 2, PageSize: 10,
		})
	})
	client := newInstancesClient(t, mux)

	t.Run("filtered and paged", func(t *testing.T) {
		result, err := client.List(context.Background(), instances.ListFilter{
			TenantID: "t1", ProjectID: "p1", Page: 2, PageSize: 10,
		})
		require.NoError(t, err)
		require.Len(t, result.Instances, 1)
		require.Equal(t, instances.StatusRunning, result.Instances[0].Status)
		require.Equal(t, map[string]string{
			"tenant_id": "t1", "project_id": "p1", "page": "2", "page_size": "10",
		}, gotQuery)
	})

	t.Run("zero filter sends no params", func(t *testing.T) {
		_, err := client.List(context.Background(), instances.ListFilter{})
		require.NoError(t, err)
		require.Empty(t, gotQuery)
	})
}

func TestClient_CRUD(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/instances", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req instances.CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "claw-1", req.Name)
		require.Equal(t, "tmpl-redis", req.Config.TemplateName)
		envelope(w, instances.Instance{ID: "i1", Name: req.Name, Status: instances.StatusCreating})
	})
	mux.HandleFunc("/api/v1/instances/i1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			envelope(w, instances.Instance{ID: "i1", Name: "claw-1", Status: instances.StatusRunning})
		case http.MethodPut:
			var req instances.UpdateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			envelope(w, instances.Instance{ID: "i1", Name: req.Name, Status: instances.StatusRunning})
		case http.MethodDelete:
			envelope(w, nil)
		}
	})
	client := newInstancesClient(t, mux)
	ctx := context.Background()

	created, err := client.Create(ctx, instances.CreateRequest{
		Name: "claw-1", TenantID: "t1", ProjectID: "p1", Type: "redis", Version: "7.2",
		Config: &instances.Config{TemplateName: "tmpl-redis"},
	})
	require.NoError(t, err)
	require.Equal(t, instances.StatusCreating, created.Status)

	got, err := client.Get(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, "claw-1", got.Name)

	updated, err := client.Update(ctx, "i1", instances.UpdateRequest{Name: "claw-renamed"})
	require.NoError(t, err)
	require.Equal(t, "claw-renamed", updated.Name)

	require.NoError(t, client.Delete(ctx, "i1"))
}

func TestClient_LifecycleActions(t *testing.T) {
	var verbs []string
	mux := http.NewServeMux()
	for _, verb := range []string{"start", "stop", "restart"} {
		verb := verb
		mux.HandleFunc("/api/v1/instances/i1/"+verb, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			verbs = append(verbs, verb)
			envelope(w, nil)
		})
	}
	client := newInstancesClient(t, mux)
	ctx := context.Background()

	require.NoError(t, client.Start(ctx, "i1"))
	require.NoError(t, client.Stop(ctx, "i1"))
	require.NoError(t, client.Restart(ctx, "i1"))
	require.Equal(t, []string{"start", "stop", "restart"}, verbs)
}

func TestClient_GetLogs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/instances/i1/logs", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "200", r.URL.Query().Get("tail_lines"))
		envelope(w, instances.Logs{Logs: "ready to accept connections\n", TailLines: 200})
	})
	client := newInstancesClient(t, mux)

	logs, err := client.GetLogs(context.Background(), "i1", 200)
	require.NoError(t, err)
	require.Contains(t, logs.Logs, "ready to accept")
	require.Equal(t, 200, logs.TailLines)
}

func TestClient_ErrorsSurfaceAsAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/instances/missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": 404, "message": "instance not found"})
	})
	client := newInstancesClient(t, mux)

	_, err := client.Get(context.Background(), "missing")
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}
