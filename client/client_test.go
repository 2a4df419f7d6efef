package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"smartstart-backend/client"
	"smartstart-backend/engine"
)

// fakeServer is a minimal in-memory stand-in for the acceptance endpoints.
type fakeServer struct {
	mu     sync.Mutex
	token  string
	docs   []map[string]interface{}
	signed map[uint]bool
	nextID uint
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		token: "test-token",
		docs: []map[string]interface{}{
			{"id": uint(1), "title": "Terms of Service", "content": "terms", "isRequired": true, "version": "1.0"},
			{"id": uint(2), "title": "Privacy Policy", "content": "privacy", "isRequired": true, "version": "1.0"},
		},
		signed: map[uint]bool{},
		nextID: 1,
	}
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/legal/required", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]map[string]interface{}, 0, len(f.docs))
		for _, d := range f.docs {
			doc := map[string]interface{}{}
			for k, v := range d {
				doc[k] = v
			}
			doc["isSigned"] = f.signed[d["id"].(uint)]
			out = append(out, doc)
		}
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /api/legal/sign", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			DocumentID uint `json:"documentId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid payload"})
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		known := false
		for _, d := range f.docs {
			if d["id"].(uint) == req.DocumentID {
				known = true
			}
		}
		if !known {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "document_not_found"})
			return
		}
		if f.signed[req.DocumentID] {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "already_signed"})
			return
		}
		f.signed[req.DocumentID] = true
		id := f.nextID
		f.nextID++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]uint{"signatureId": id})
	})
	return mux
}

func TestFetchRequired_DecodesDocuments(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := client.New(srv.URL, "test-token")
	docs, err := c.FetchRequired(context.Background())
	if err != nil {
		t.Fatalf("FetchRequired: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != 1 || docs[0].Title != "Terms of Service" || docs[0].IsSigned {
		t.Errorf("first document decoded wrong: %+v", docs[0])
	}
}

func TestFetchRequired_BadTokenMapsToUnauthorized(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := client.New(srv.URL, "wrong-token")
	_, err := c.FetchRequired(context.Background())
	if !errors.Is(err, engine.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSign_StatusCodeMapping(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := client.New(srv.URL, "test-token")
	data := engine.SignatureData{Name: "Ada", Email: "ada@smartstart.local", SignedAt: time.Now().UTC()}

	res, err := c.Sign(context.Background(), 1, data)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if res.SignatureID == 0 {
		t.Error("expected a signature id")
	}

	if _, err := c.Sign(context.Background(), 1, data); !errors.Is(err, engine.ErrAlreadySigned) {
		t.Errorf("duplicate sign: expected ErrAlreadySigned, got %v", err)
	}
	if _, err := c.Sign(context.Background(), 999, data); !errors.Is(err, engine.ErrDocumentNotFound) {
		t.Errorf("unknown doc: expected ErrDocumentNotFound, got %v", err)
	}
}

func TestEngineOverHTTP_HappyPath(t *testing.T) {
	fake := newFakeServer()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := client.New(srv.URL, "test-token")
	e := engine.New(c, engine.Signer{Name: "Ada", Email: "ada@smartstart.local"}, engine.Config{})

	fired := 0
	e.OnCompleted(func() { fired++ })

	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if e.Degraded() {
		t.Fatal("live server must not trigger degraded mode")
	}

	for !e.IsComplete() {
		e.ReportScroll(1.0)
		if err := e.Accept(context.Background()); err != nil {
			t.Fatalf("Accept: %v", err)
		}
	}

	if fired != 1 {
		t.Fatalf("completion callback fired %d times, want 1", fired)
	}
	if len(fake.signed) != 2 {
		t.Fatalf("expected both documents signed on the server, got %d", len(fake.signed))
	}
}
