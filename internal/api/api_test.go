package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/starford/orderlist/internal/catalog"
	"github.com/starford/orderlist/internal/checksum"
	"github.com/starford/orderlist/internal/export"
	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/ledger"
	"github.com/starford/orderlist/internal/notify"
	"github.com/starford/orderlist/internal/raster"
	"github.com/starford/orderlist/internal/storage"
	"github.com/starford/orderlist/internal/testutil"
)

// testEnv builds a service and router over the default catalog.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*itemservice.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) (*itemservice.Service, http.Handler) {
	t.Helper()
	icons := catalog.Default()
	stub := &testutil.StubRasterizer{}
	svc := itemservice.NewService(
		ledger.New(icons),
		notify.NewSlot(nil),
		export.NewComposer(stub, export.WithClock(testutil.Clock()), export.WithCompression(false)),
	)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	ih := NewIconHandler(icons, raster.New(icons, raster.WithScale(2)))
	return svc, NewRouter(svc, ih, store, authEnabled, token, sseHandler)
}

func addItem(t *testing.T, router http.Handler, name string, qty int, icon string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(AddItemRequest{Name: name, Quantity: json.RawMessage(strconv.Itoa(qty)), Icon: icon})
	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddListRemove(t *testing.T) {
	_, router := testEnv(t, "")

	w := addItem(t, router, "Milk", 2, "Shopping")
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
	}
	var milk Item
	_ = json.Unmarshal(w.Body.Bytes(), &milk)
	if milk.ID == "" || milk.Name != "Milk" || milk.Quantity != 2 || milk.IconID != "Shopping" {
		t.Fatalf("item = %+v", milk)
	}
	if w := addItem(t, router, "Chips", 1, "Cookies"); w.Code != http.StatusCreated {
		t.Fatalf("add status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/items/"+milk.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/items", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var list ItemListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Items[0].Name != "Chips" {
		t.Errorf("list = %+v", list)
	}
}

func TestGetItem(t *testing.T) {
	_, router := testEnv(t, "")
	w := addItem(t, router, "Milk", 2, "Shopping")
	var milk Item
	_ = json.Unmarshal(w.Body.Bytes(), &milk)

	req := httptest.NewRequest(http.MethodGet, "/items/"+milk.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var got Item
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || got != milk {
		t.Fatalf("get = %d %+v, want %+v", w.Code, got, milk)
	}

	req = httptest.NewRequest(http.MethodGet, "/items/ghost", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusNotFound || resp.Error != itemservice.MsgNotFound {
		t.Errorf("missing = %d %q", w.Code, resp.Error)
	}
}

func TestAddValidation(t *testing.T) {
	_, router := testEnv(t, "")

	tests := []struct {
		name    string
		item    string
		qty     int
		icon    string
		wantMsg string
	}{
		{"empty name", "", 2, "Shopping", itemservice.MsgInvalid},
		{"zero quantity", "Milk", 0, "Shopping", itemservice.MsgInvalid},
		{"no icon", "Milk", 2, "", itemservice.MsgMissingIcon},
		{"unknown icon", "Milk", 2, "Rocket", itemservice.MsgMissingIcon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := addItem(t, router, tt.item, tt.qty, tt.icon)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", w.Code)
			}
			var resp errResponse
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}

func TestAddInvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAddNonIntegerQuantity(t *testing.T) {
	for _, qty := range []string{`"abc"`, `2.5`, `null`, `1e2`} {
		t.Run(qty, func(t *testing.T) {
			svc, router := testEnv(t, "")
			body := `{"name":"Milk","quantity":` + qty + `,"icon":"Shopping"}`
			req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", w.Code)
			}
			var resp errResponse
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Error != itemservice.MsgInvalid {
				t.Errorf("error = %q", resp.Error)
			}

			req = httptest.NewRequest(http.MethodGet, "/notification", nil)
			w = httptest.NewRecorder()
			router.ServeHTTP(w, req)
			var n NotificationResponse
			_ = json.Unmarshal(w.Body.Bytes(), &n)
			if !n.Pending || n.Message != itemservice.MsgInvalid || n.Kind != "error" {
				t.Errorf("notification = %+v", n)
			}
			if got := len(svc.Items()); got != 0 {
				t.Errorf("ledger has %d items, want 0", got)
			}
		})
	}
}

func TestAddQuotedQuantity(t *testing.T) {
	_, router := testEnv(t, "")
	body := `{"name":"Milk","quantity":"3","icon":"Shopping"}`
	req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var item Item
	_ = json.Unmarshal(w.Body.Bytes(), &item)
	if item.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", item.Quantity)
	}
}

func TestRemove_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodDelete, "/items/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestNotificationLifecycle(t *testing.T) {
	_, router := testEnv(t, "")
	addItem(t, router, "Milk", 2, "Shopping")

	req := httptest.NewRequest(http.MethodGet, "/notification", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var n NotificationResponse
	_ = json.Unmarshal(w.Body.Bytes(), &n)
	if !n.Pending || n.Message != itemservice.MsgAdded || n.Kind != "success" {
		t.Fatalf("notification = %+v", n)
	}

	req = httptest.NewRequest(http.MethodDelete, "/notification", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("ack status = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notification", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	n = NotificationResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &n)
	if n.Pending {
		t.Errorf("notification still pending: %+v", n)
	}
}

func TestExportDownload(t *testing.T) {
	_, router := testEnv(t, "")
	addItem(t, router, "Chips", 1, "Cookies")

	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="items_list.pdf"` {
		t.Errorf("disposition = %q", cd)
	}
	data := w.Body.Bytes()
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("body is not a PDF: %q", data[:min(len(data), 16)])
	}
	if etag := w.Header().Get("ETag"); etag != checksum.ETag(data) {
		t.Errorf("etag = %q", etag)
	}
	if !bytes.Contains(data, []byte("(Chips ---- Quantity: 1) Tj")) {
		t.Error("row text missing from document")
	}
}

func TestExportSavedAndListed(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/exports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var list ExportListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list.Exports) != 0 {
		t.Fatalf("initial exports = %d %+v", w.Code, list)
	}

	addItem(t, router, "Chips", 1, "Cookies")
	req = httptest.NewRequest(http.MethodPost, "/export", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	etag := w.Header().Get("ETag")

	req = httptest.NewRequest(http.MethodGet, "/exports", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	list = ExportListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Exports) != 1 || list.Exports[0].Path != "items_list.pdf" {
		t.Fatalf("exports = %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/exports/items_list.pdf", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("ETag") != etag {
		t.Fatalf("download = %d etag %q, want %q", w.Code, w.Header().Get("ETag"), etag)
	}

	req = httptest.NewRequest(http.MethodGet, "/exports/items_list.pdf", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional download = %d, want 304", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/exports/config.yaml", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("non-pdf download = %d, want 404", w.Code)
	}
}

func TestDeleteExport(t *testing.T) {
	_, router := testEnv(t, "")
	addItem(t, router, "Chips", 1, "Cookies")
	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodDelete, "/exports/items_list.pdf", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, want 204", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/exports", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var list ExportListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Exports) != 0 {
		t.Errorf("exports after delete = %+v", list.Exports)
	}

	for _, name := range []string{"items_list.pdf", "config.yaml"} {
		req = httptest.NewRequest(http.MethodDelete, "/exports/"+name, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("delete %s = %d, want 404", name, w.Code)
		}
	}
}

func TestExportEmptyLedger(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var resp errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != itemservice.MsgEmptyLedger {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestIcons(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/icons", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp IconListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Icons) != 9 || resp.Icons[0].ID != "Shopping" || resp.Icons[8].ID != "Surf" {
		t.Fatalf("icons = %+v", resp.Icons)
	}

	req = httptest.NewRequest(http.MethodGet, "/icons/Wine.png", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d, body = %s", w.Code, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("preview is not a PNG")
	}

	req = httptest.NewRequest(http.MethodGet, "/icons/Rocket.png", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown preview = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	body, _ := json.Marshal(AddItemRequest{Name: "Milk", Quantity: json.RawMessage("1"), Icon: "Shopping"})
	req := httptest.NewRequest(http.MethodPost, "/items", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("authed add = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret", blockingSSE)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestAuthMiddleware_QueryTokenOnlyForGet(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/items?access_token=secret123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET with query token = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/export?access_token=secret123", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("POST with query token = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate challenge")
	}
}
