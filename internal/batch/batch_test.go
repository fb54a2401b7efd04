package batch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/orderlist/internal/apperr"
	"github.com/starford/orderlist/internal/catalog"
	"github.com/starford/orderlist/internal/export"
	"github.com/starford/orderlist/internal/itemservice"
	"github.com/starford/orderlist/internal/ledger"
	"github.com/starford/orderlist/internal/models"
	"github.com/starford/orderlist/internal/storage"
	"github.com/starford/orderlist/internal/testutil"
)

func testRunner(t *testing.T, stub *testutil.StubRasterizer) (*Runner, *storage.FS, string) {
	t.Helper()
	out := t.TempDir()
	store, err := storage.NewFS(out)
	if err != nil {
		t.Fatal(err)
	}
	c := export.NewComposer(stub, export.WithClock(testutil.Clock()), export.WithCompression(false))
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewRunner(catalog.Default(), c, store, nil, logger), store, t.TempDir()
}

func writeList(t *testing.T, dir, src string) string {
	t.Helper()
	p := filepath.Join(dir, "items.yaml")
	if err := os.WriteFile(p, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRunWritesDocument(t *testing.T) {
	r, store, dir := testRunner(t, &testutil.StubRasterizer{})
	list := writeList(t, dir, `items:
  - name: Milk
    quantity: 2
    icon: Shopping
  - name: ""
    quantity: 1
    icon: Wine
  - name: Chips
    quantity: 1
    icon: Cookies
`)

	rep, err := r.Run(context.Background(), list)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Accepted != 2 || rep.Rejected != 1 {
		t.Errorf("accepted=%d rejected=%d", rep.Accepted, rep.Rejected)
	}
	if len(rep.Notices) != 3 {
		t.Fatalf("notices = %d, want 3", len(rep.Notices))
	}
	bad := rep.Notices[1]
	if bad.Kind != models.KindError || bad.Message != itemservice.MsgInvalid || bad.Line != 5 {
		t.Errorf("rejected notice = %+v", bad)
	}

	data, err := store.Read("items_list.pdf")
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	milk := bytes.Index(data, []byte("(Milk ---- Quantity: 2) Tj"))
	chips := bytes.Index(data, []byte("(Chips ---- Quantity: 1) Tj"))
	if milk < 0 || chips < 0 || milk > chips {
		t.Errorf("rows out of order or missing: milk=%d chips=%d", milk, chips)
	}
	if rep.Pages != 1 || rep.SavedPath != "items_list.pdf" {
		t.Errorf("report = %+v", rep)
	}
}

func TestRunReportsTitleAndItems(t *testing.T) {
	out := t.TempDir()
	store, err := storage.NewFS(out)
	if err != nil {
		t.Fatal(err)
	}
	c := export.NewComposer(&testutil.StubRasterizer{}, export.WithClock(testutil.Clock()))
	r := NewRunner(catalog.Default(), c, store, nil, nil,
		ledger.WithClock(testutil.Clock()), ledger.WithTimeLayout("15:04"))

	list := writeList(t, t.TempDir(), `title: Weekly shop
items:
  - name: Wine
    quantity: 3
    icon: Wine
`)
	rep, err := r.Run(context.Background(), list)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Title != "Weekly shop" {
		t.Errorf("title = %q", rep.Title)
	}
	if len(rep.Items) != 1 || rep.Items[0].Name != "Wine" || rep.Items[0].CreatedAt != "09:30" {
		t.Errorf("items = %+v", rep.Items)
	}
}

func TestRunEmptyListKeepsPrevious(t *testing.T) {
	r, store, dir := testRunner(t, &testutil.StubRasterizer{})
	_ = store.Write("items_list.pdf", []byte("previous"))
	list := writeList(t, dir, "items: []\n")

	_, err := r.Run(context.Background(), list)
	if !errors.Is(err, apperr.ErrEmptyLedger) {
		t.Fatalf("err = %v, want ErrEmptyLedger", err)
	}
	data, _ := store.Read("items_list.pdf")
	if string(data) != "previous" {
		t.Error("previous document overwritten")
	}
}

func TestRunRenderFailure(t *testing.T) {
	stub := &testutil.StubRasterizer{Fail: map[string]error{"Wine": errors.New("boom")}}
	r, store, dir := testRunner(t, stub)
	list := writeList(t, dir, "items:\n  - {name: Merlot, quantity: 1, icon: Wine}\n")

	_, err := r.Run(context.Background(), list)
	if !errors.Is(err, apperr.ErrRender) {
		t.Fatalf("err = %v", err)
	}
	if _, err := store.Read("items_list.pdf"); err == nil {
		t.Error("no document expected after a failed render")
	}
}

func TestRunMissingList(t *testing.T) {
	r, _, dir := testRunner(t, &testutil.StubRasterizer{})
	if _, err := r.Run(context.Background(), filepath.Join(dir, "none.yaml")); err == nil {
		t.Error("expected error for missing list")
	}
}
