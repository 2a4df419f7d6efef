package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smartstart-backend/config"
	"smartstart-backend/controllers"
	"smartstart-backend/models"
	"smartstart-backend/routes"
	"smartstart-backend/services"
)

func setupTestServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.LegalDocument{},
		&models.Signature{},
		&models.AuditEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// the auth controller reaches the DB through the package global
	config.DB = db
	config.SeedDatabase()

	lc := controllers.NewLegalController(services.NewSignatureService(db))
	dc := controllers.NewDocumentController(services.NewDocumentService(db))
	ac := controllers.NewAuditController(services.NewAuditService(db))

	return routes.SetupRouter(lc, dc, ac, db, zap.NewNop()), db
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "smartstart-test/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"full_name": "Ada Founder",
		"email":     "ada@smartstart.local",
		"password":  "s3cret-pass",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if out.Token == "" {
		t.Fatal("register returned an empty token")
	}
	return out.Token
}

func signBody(docID uint) map[string]interface{} {
	return map[string]interface{}{
		"documentId": docID,
		"signatureData": map[string]interface{}{
			"name":  "Ada Founder",
			"email": "ada@smartstart.local",
		},
	}
}

func TestLegalEndpoints_RequireAuth(t *testing.T) {
	router, _ := setupTestServer(t)

	for _, path := range []string{"/api/legal/required", "/api/legal/status"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status %d, want 401", path, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/api/legal/sign", "bogus-token", signBody(1))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("sign with bogus token: status %d, want 401", rec.Code)
	}
}

func TestAcceptanceFlow_FourDocuments(t *testing.T) {
	router, _ := setupTestServer(t)
	token := registerUser(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/legal/required", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("required: status %d body %s", rec.Code, rec.Body.String())
	}

	var required []struct {
		ID       uint   `json:"id"`
		Title    string `json:"title"`
		IsSigned bool   `json:"isSigned"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &required); err != nil {
		t.Fatalf("decode required: %v", err)
	}
	if len(required) != 4 {
		t.Fatalf("expected 4 seeded required documents, got %d", len(required))
	}
	for _, doc := range required {
		if doc.IsSigned {
			t.Errorf("fresh user must have no signed documents, %q is signed", doc.Title)
		}
	}

	wantPercent := []int{25, 50, 75, 100}
	for i, doc := range required {
		rec = doJSON(t, router, http.MethodPost, "/api/legal/sign", token, signBody(doc.ID))
		if rec.Code != http.StatusCreated {
			t.Fatalf("sign document %d: status %d body %s", doc.ID, rec.Code, rec.Body.String())
		}

		var status struct {
			TotalDocuments       int  `json:"totalDocuments"`
			SignedDocuments      int  `json:"signedDocuments"`
			CompletionPercentage int  `json:"completionPercentage"`
			IsComplete           bool `json:"isComplete"`
		}
		rec = doJSON(t, router, http.MethodGet, "/api/legal/status", token, nil)
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.SignedDocuments != i+1 || status.CompletionPercentage != wantPercent[i] {
			t.Fatalf("after signing %d docs: %+v", i+1, status)
		}
		if status.IsComplete != (i == 3) {
			t.Fatalf("isComplete wrong after %d docs: %+v", i+1, status)
		}
	}
}

func TestSign_DuplicateReturnsAlreadySigned(t *testing.T) {
	router, db := setupTestServer(t)
	token := registerUser(t, router)

	var doc models.LegalDocument
	if err := db.Where("slug = ?", "terms").First(&doc).Error; err != nil {
		t.Fatalf("load seeded doc: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/legal/sign", token, signBody(doc.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first sign: status %d", rec.Code)
	}

	// the double-click: same document again
	rec = doJSON(t, router, http.MethodPost, "/api/legal/sign", token, signBody(doc.ID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate sign: status %d, want 400", rec.Code)
	}
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Error != "already_signed" {
		t.Fatalf("duplicate sign body %s (err %v)", rec.Body.String(), err)
	}

	var count int64
	db.Model(&models.Signature{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 signature row, got %d", count)
	}
}

func TestSign_UnknownDocumentReturns404(t *testing.T) {
	router, _ := setupTestServer(t)
	token := registerUser(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/legal/sign", token, signBody(99999))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown document: status %d, want 404", rec.Code)
	}
}

func TestAuditTrail_RecordsSignEvents(t *testing.T) {
	router, db := setupTestServer(t)
	token := registerUser(t, router)

	var doc models.LegalDocument
	if err := db.Where("slug = ?", "privacy").First(&doc).Error; err != nil {
		t.Fatalf("load seeded doc: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/legal/sign", token, signBody(doc.ID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("sign: status %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/audit?action=document_signed", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit list: status %d", rec.Code)
	}
	var events []models.AuditEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode audit list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 document_signed event, got %d", len(events))
	}
	if events[0].UserAgent == "" {
		t.Error("audit event must capture the user agent")
	}
}

func TestDocuments_NewVersionInsteadOfMutation(t *testing.T) {
	router, _ := setupTestServer(t)
	token := registerUser(t, router)

	// posting an existing (slug, version) returns the stored row unchanged
	rec := doJSON(t, router, http.MethodPost, "/api/documents", token, map[string]interface{}{
		"slug":    "terms",
		"title":   "Terms of Service",
		"content": "rewritten content that must not replace v1.0",
		"version": "1.0",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("post existing version: status %d", rec.Code)
	}
	var doc models.LegalDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Content == "rewritten content that must not replace v1.0" {
		t.Fatal("existing version content was overwritten")
	}

	// a new version mints a new row
	rec = doJSON(t, router, http.MethodPost, "/api/documents", token, map[string]interface{}{
		"slug":    "terms",
		"title":   "Terms of Service",
		"content": "updated terms",
		"version": "2.0",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("post new version: status %d", rec.Code)
	}
	var v2 models.LegalDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &v2); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if v2.ID == doc.ID || v2.Version != "2.0" {
		t.Fatalf("expected a distinct 2.0 row, got id=%d version=%s", v2.ID, v2.Version)
	}
}
