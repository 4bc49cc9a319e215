package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/stock-ledger/internal/handlers"
	"github.com/ammerola/stock-ledger/internal/pkg/config"
	"github.com/ammerola/stock-ledger/test/helpers"
	"github.com/ammerola/stock-ledger/test/mocks"
)

// api routes requests through the real mux onto mocked services
type api struct {
	mux        *http.ServeMux
	warehouses *mocks.MockWarehouseService
	movements  *mocks.MockMovementService
	queries    *mocks.MockQueryService
	exporter   *mocks.MockStockExporter
	scheduler  *mocks.MockSnapshotScheduler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := helpers.TestLogger()

	a := &api{
		mux:        http.NewServeMux(),
		warehouses: mocks.NewMockWarehouseService(ctrl),
		movements:  mocks.NewMockMovementService(ctrl),
		queries:    mocks.NewMockQueryService(ctrl),
		exporter:   mocks.NewMockStockExporter(ctrl),
		scheduler:  mocks.NewMockSnapshotScheduler(ctrl),
	}

	router := &handlers.Router{
		Warehouses: handlers.NewWarehouseHandler(a.warehouses, logger),
		Movements:  handlers.NewMovementHandler(a.movements, logger),
		Queries:    handlers.NewQueryHandler(a.queries, logger),
		Exports:    handlers.NewExportHandler(a.exporter, a.warehouses, a.scheduler, logger),
	}
	router.Register(a.mux, config.ServerConfig{})
	return a
}

func (a *api) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
