package repository

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleDocument = `{
	"categories": [{"id": 1, "name": "Cases", "icon": "📱", "image": "", "color": "#FEF3E2"}],
	"products": [{
		"id": 1,
		"name": "iPhone 15 Pro Case",
		"description": "Slim case",
		"price": 29.99,
		"images": ["https://example.com/case.jpg"],
		"category": "Cases",
		"categoryId": 1,
		"colors": ["#000000"],
		"inStock": true,
		"rating": 4.5
	}],
	"metadata": {"totalProducts": 1, "generatedAt": "2024-01-01T00:00:00Z", "version": "1.0"}
}`

func TestFileSourceReadsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Categories) != 1 || len(doc.Products) != 1 {
		t.Fatalf("expected 1 category and 1 product, got %d/%d", len(doc.Categories), len(doc.Products))
	}
	p := doc.Products[0]
	if p.Price.String() != "29.99" {
		t.Errorf("expected price 29.99, got %s", p.Price)
	}
	if p.Rating == nil || *p.Rating != 4.5 {
		t.Errorf("expected rating 4.5, got %v", p.Rating)
	}
	if doc.Metadata == nil || doc.Metadata.Version != "1.0" {
		t.Errorf("expected metadata version 1.0, got %+v", doc.Metadata)
	}
}

func TestFileSourceReadsGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	gz.Write([]byte(sampleDocument))
	gz.Close()
	f.Close()

	doc, err := NewFileSource(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Products) != 1 {
		t.Errorf("expected 1 product, got %d", len(doc.Products))
	}
}

func TestFileSourceErrors(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.json")
	os.WriteFile(path, []byte(`{"categories": [`), 0o644)
	if _, err := NewFileSource(path).Fetch(context.Background()); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleDocument))
		case "/slow.json":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(sampleDocument))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	doc, err := NewHTTPSource(srv.URL+"/products.json", time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Products[0].Name != "iPhone 15 Pro Case" {
		t.Errorf("unexpected product %q", doc.Products[0].Name)
	}

	_, err = NewHTTPSource(srv.URL+"/missing.json", time.Second).Fetch(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}

	if _, err := NewHTTPSource(srv.URL+"/slow.json", 50*time.Millisecond).Fetch(context.Background()); err == nil {
		t.Error("expected timeout error")
	}
}
