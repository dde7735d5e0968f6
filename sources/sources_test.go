package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmdatafocus/invoice_reconcile/reconcile"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	in := "\ufeffInvoice Number,PO Number,Total Amount\n" +
		"INV-001, PO-156 ,\"15,750.00\"\n" +
		",,\n" +
		"INV-002,PO-157\n"
	records, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first["Invoice Number"] != "INV-001" {
		t.Fatalf("BOM not stripped from header: %v", first)
	}
	// values are passed through untouched
	if first["PO Number"] != " PO-156 " || first["Total Amount"] != "15,750.00" {
		t.Fatalf("unexpected values %v", first)
	}
	if v, ok := records[1]["Total Amount"]; !ok || v != "" {
		t.Fatalf("short row must pad with empty string, got %v", records[1])
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("PO Number,Vendor Name\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %v", records)
	}
}

func xlsxBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	data := xlsxBytes(t, [][]interface{}{
		{"PO Number", "Vendor Name", "Total Amount"},
		{"PO-156", "Sea Shell", 15750.5},
		{},
		{"PO-157", "Blue Reef", 900},
	})
	records, err := ParseXLSX(bytes.NewReader(data), "")
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(records), records)
	}
	if records[0]["PO Number"] != "PO-156" || records[0]["Total Amount"] != "15750.5" {
		t.Fatalf("unexpected first record %v", records[0])
	}
	if !reconcile.Amount(records[1]["Total Amount"]).Equal(reconcile.Amount(900)) {
		t.Fatalf("unexpected amount %v", records[1]["Total Amount"])
	}
}

func TestParseXLSX_UnknownSheet(t *testing.T) {
	data := xlsxBytes(t, [][]interface{}{{"PO Number"}})
	if _, err := ParseXLSX(bytes.NewReader(data), "Missing"); err == nil {
		t.Fatalf("expected error for unknown sheet")
	}
}

func TestParseJSON(t *testing.T) {
	records, err := ParseJSON(strings.NewReader(`[{"poNumber": "PO-1", "totalAmount": 10.50}]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if n, ok := records[0]["totalAmount"].(json.Number); !ok || n.String() != "10.50" {
		t.Fatalf("expected json.Number 10.50, got %#v", records[0]["totalAmount"])
	}
}

func TestParseJSON_NotAList(t *testing.T) {
	_, err := ParseJSON(strings.NewReader(`{"poNumber": "PO-1"}`))
	if !errors.Is(err, reconcile.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseFile_Dispatch(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr error
		want    int
	}{
		{name: "inv.csv", content: "PO Number\nPO-1\n", want: 1},
		{name: "INV.CSV", content: "PO Number\nPO-1\nPO-2\n", want: 2},
		{name: "inv.json", content: `[]`, want: 0},
		{name: "inv.pdf", content: "%PDF", wantErr: ErrUnsupportedFormat},
		{name: "inv", content: "", wantErr: ErrUnsupportedFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ParseFile(tc.name, strings.NewReader(tc.content))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			if len(records) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(records))
			}
		})
	}
}

func TestNewERPClient_RequiresConfig(t *testing.T) {
	if _, err := NewERPClient("", "key", "", time.Millisecond); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if _, err := NewERPClient("http://erp", " ", "", time.Millisecond); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}

func TestERPClient_Load(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("X-ERP-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("batch") != "2024-01" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/invoices":
			if r.URL.Query().Get("cursor") == "" {
				_, _ = w.Write([]byte(`{"data": [{"invoiceNumber": "INV-1", "poNumber": "PO-1", "totalAmount": 10.00}], "next_cursor": "p2", "has_more": true}`))
				return
			}
			_, _ = w.Write([]byte(`{"data": [{"invoiceNumber": "INV-2", "poNumber": "PO-2"}], "next_cursor": ""}`))
		case "/purchase-orders":
			_, _ = w.Write([]byte(`{"items": [{"poNumber": "PO-1", "totalAmount": 10}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewERPClient(srv.URL+"/", "secret", "X-ERP-Key", time.Millisecond)
	if err != nil {
		t.Fatalf("NewERPClient: %v", err)
	}
	defer client.Close()

	batch, err := client.Load(context.Background(), url.Values{"batch": {"2024-01"}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(batch.Invoices) != 2 || len(batch.PurchaseOrders) != 1 {
		t.Fatalf("unexpected batch sizes %d/%d", len(batch.Invoices), len(batch.PurchaseOrders))
	}
	if batch.Invoices[1]["invoiceNumber"] != "INV-2" {
		t.Fatalf("pages out of order: %v", batch.Invoices)
	}
	if _, ok := batch.Invoices[0]["totalAmount"].(json.Number); !ok {
		t.Fatalf("expected json.Number amount, got %#v", batch.Invoices[0]["totalAmount"])
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
}

func TestERPClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewERPClient(srv.URL, "secret", "", time.Millisecond)
	if err != nil {
		t.Fatalf("NewERPClient: %v", err)
	}
	defer client.Close()

	_, err = client.Load(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "erp api error 502") {
		t.Fatalf("expected erp api error, got %v", err)
	}
}

func TestERPClient_CancelledContext(t *testing.T) {
	client, err := NewERPClient("http://127.0.0.1:0", "secret", "", time.Hour)
	if err != nil {
		t.Fatalf("NewERPClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Load(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
