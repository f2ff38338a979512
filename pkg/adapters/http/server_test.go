package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pipeview"
	httpadapter "github.com/aretw0/pipeview/pkg/adapters/http"
	"github.com/aretw0/pipeview/pkg/adapters/memory"
	"github.com/aretw0/pipeview/pkg/domain"
	"github.com/aretw0/pipeview/pkg/promotions"
)

func stage(name, warehouse string, upstream ...string) domain.Stage {
	s := domain.Stage{ObjectMeta: domain.ObjectMeta{Name: name}}
	s.Spec.Subscriptions.Warehouse = warehouse
	for _, u := range upstream {
		s.Spec.Subscriptions.UpstreamStages = append(s.Spec.Subscriptions.UpstreamStages, domain.StageSubscription{Name: u})
	}
	return s
}

func setup(t *testing.T, opts ...httpadapter.HandlerOption) (http.Handler, *memory.Source) {
	t.Helper()
	src := memory.NewSource()
	src.PutWarehouse("demo", domain.Warehouse{ObjectMeta: domain.ObjectMeta{Name: "main"}})
	dev := stage("dev", "main")
	dev.Status.CurrentFreight = &domain.FreightReference{Name: "f1", Warehouse: "main"}
	src.PutStage("demo", dev)
	src.PutStage("demo", stage("qa", "", "dev"))
	src.PutStage("demo", stage("prod", "", "qa"))
	src.PutFreight("demo", domain.Freight{ObjectMeta: domain.ObjectMeta{Name: "f1"}, Warehouse: "main"})

	viewer := pipeview.New(src)
	t.Cleanup(viewer.Close)

	opts = append(opts, httpadapter.WithUnavailableErrors(pipeview.ErrClosed))
	return httpadapter.NewHandler(viewer, opts...), src
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := setup(t, httpadapter.WithVersion("1.2.3"))

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/info", nil)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "1.2.3", info["version"])
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pipeview_active_watches 0\n"))
	})
	h, _ := setup(t, httpadapter.WithMetrics(metrics))

	w := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pipeview_active_watches")
}

func TestGetPipeline(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/projects/demo/pipeline", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[httpadapter.PipelineResponse](t, w)
	assert.Equal(t, "demo", resp.Project)
	assert.Len(t, resp.Topology.Nodes, 4)
	assert.Len(t, resp.Topology.Connectors, 3)
	assert.Equal(t, []string{"dev", "qa", "prod"}, resp.Topology.SortedStageNames())
	assert.Empty(t, resp.Faded)
	assert.True(t, resp.Visible)
	assert.Equal(t, []string{"qa"}, resp.Subscribers["dev"])
}

func TestGetMermaid(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/projects/demo/pipeline.mmd", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stage_dev --> stage_qa")
}

func TestSelection(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodPost, "/projects/demo/selection", httpadapter.SelectRequest{Action: "promoteSubscribers", Stage: "dev"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[httpadapter.PipelineResponse](t, w)
	assert.Equal(t, "f1", resp.Selection.Freight)
	assert.Equal(t, "main", resp.SelectedWarehouse)
	assert.ElementsMatch(t, []string{"dev", "prod"}, resp.Faded)

	w = do(t, h, http.MethodDelete, "/projects/demo/selection", nil)
	resp = decode[httpadapter.PipelineResponse](t, w)
	assert.True(t, resp.Selection.Idle())
	assert.Empty(t, resp.Faded)

	w = do(t, h, http.MethodPost, "/projects/demo/selection", httpadapter.SelectRequest{Action: "explode", Stage: "dev"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/projects/demo/selection", httpadapter.SelectRequest{Action: "promote", Stage: "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualApproval(t *testing.T) {
	h, src := setup(t)

	w := do(t, h, http.MethodPost, "/projects/demo/manual-approval", httpadapter.ManualApprovalRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/projects/demo/manual-approval", httpadapter.ManualApprovalRequest{Freight: "f1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/projects/demo/stages/prod/click", nil)
	require.Equal(t, http.StatusOK, w.Code)
	click := decode[httpadapter.ClickResponse](t, w)
	assert.True(t, click.Approved)
	assert.True(t, click.Selection.Idle())
	assert.Equal(t, []memory.Approval{{Project: "demo", Stage: "prod", Freight: "f1"}}, src.Approvals())

	// Not in approval mode anymore: a click does nothing.
	w = do(t, h, http.MethodPost, "/projects/demo/stages/prod/click", nil)
	click = decode[httpadapter.ClickResponse](t, w)
	assert.False(t, click.Approved)
}

func TestPromotions(t *testing.T) {
	h, src := setup(t)
	src.PutPromotion("demo", domain.Promotion{
		ObjectMeta: domain.ObjectMeta{
			Name:        "prod.1",
			Annotations: map[string]string{domain.AnnotationAbort: "x"},
		},
		Spec:   domain.PromotionSpec{Stage: "prod", Freight: "f1"},
		Status: &domain.PromotionStatus{Phase: domain.PromotionPhaseRunning},
	})

	w := do(t, h, http.MethodGet, "/projects/demo/stages/prod/promotions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode[[]promotions.Row](t, w)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].AbortPending)
	assert.Equal(t, promotions.AbortQueuedMessage, rows[0].Message)

	w = do(t, h, http.MethodGet, "/projects/demo/stages/prod/promotions/prod.1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/projects/demo/stages/prod/promotions/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/projects/demo/stages/qa/promotions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestWarehouseActions(t *testing.T) {
	h, src := setup(t)

	w := do(t, h, http.MethodPost, "/projects/demo/warehouses/main/refresh", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"main"}, src.Refreshes())

	w = do(t, h, http.MethodPost, "/projects/demo/warehouses/ghost/refresh", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/projects/demo/warehouses/main/filter", nil)
	assert.Equal(t, "main", decode[map[string]string](t, w)["selectedWarehouse"])
	w = do(t, h, http.MethodPost, "/projects/demo/warehouses/main/filter", nil)
	assert.Equal(t, "", decode[map[string]string](t, w)["selectedWarehouse"])

	w = do(t, h, http.MethodDelete, "/projects/demo/warehouse-filter", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSettings(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodPost, "/projects/demo/settings/hide-subscriptions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[map[string]bool](t, w)["hideSubscriptions"])

	w = do(t, h, http.MethodGet, "/projects/demo/pipeline", nil)
	resp := decode[httpadapter.PipelineResponse](t, w)
	assert.Len(t, resp.Topology.Connectors, 2)

	w = do(t, h, http.MethodDelete, "/projects/demo/settings/stage-colors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string]string](t, w), 3)
}

func TestFreightAndHighlight(t *testing.T) {
	h, _ := setup(t)

	w := do(t, h, http.MethodGet, "/projects/demo/freight", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Freight](t, w), 1)

	w = do(t, h, http.MethodGet, "/projects/demo/highlight?freight=f1", nil)
	assert.Equal(t, map[string]bool{"dev": true}, decode[map[string]bool](t, w))

	w = do(t, h, http.MethodGet, "/projects/demo/highlight", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVisibility(t *testing.T) {
	h, src := setup(t)

	w := do(t, h, http.MethodPut, "/projects/demo/visibility", httpadapter.VisibilityRequest{Visible: false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Eventually(t, func() bool {
		return src.Watchers("stages", "demo", "") == 0
	}, time.Second, 10*time.Millisecond)

	w = do(t, h, http.MethodPut, "/projects/demo/visibility", httpadapter.VisibilityRequest{Visible: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, src.Watchers("stages", "demo", ""))
}

func TestSubscribeEvents(t *testing.T) {
	h, src := setup(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/projects/demo/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "stream ended before %q", prefix)
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}

	waitFor("event: ping")
	src.PutStage("demo", stage("uat", "", "qa"))
	waitFor("event: update")
	data := waitFor("data: ")
	assert.Contains(t, data, `"reason":"stages"`)
}
