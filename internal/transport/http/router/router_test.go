package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-social-api/internal/core/auth"
	"go-social-api/internal/domain"
	"go-social-api/internal/realtime"
	"go-social-api/internal/repo"
	"go-social-api/internal/service"
	"go-social-api/internal/storage"
	gql "go-social-api/internal/transport/graphql"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Post{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := zap.NewNop()
	images, err := storage.NewImages(t.TempDir(), log)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "social-api", TTL: time.Hour}

	hub := realtime.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	svc := service.New(service.Opts{
		DB:     db,
		Users:  repo.NewUserRepo(db),
		Posts:  repo.NewPostRepo(db),
		JWTer:  jwter,
		Images: images,
		Hub:    hub,
		Log:    log,
	})
	schema, err := gql.NewSchema(svc)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return New(Opts{Log: log, Svc: svc, Images: images, JWTer: jwter, Hub: hub, Schema: schema})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("response not json: %v: %s", err, w.Body.String())
		}
	}
	return w, out
}

func signupAndLogin(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, _ := doJSON(t, r, http.MethodPost, "/signup", "", map[string]string{
		"email": email, "name": "Tester", "password": "secret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup = %d: %s", w.Code, w.Body.String())
	}
	w, out := doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", w.Code, w.Body.String())
	}
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatal("no token in login response")
	}
	return token
}

func postMultipart(t *testing.T, r *gin.Engine, method, path, token string, fields map[string]string, withImage bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "pic.png")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write([]byte("\x89PNG fake image bytes"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestSignupLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	w, out := doJSON(t, r, http.MethodPost, "/signup", "", map[string]string{
		"email": "a@b.com", "name": "A", "password": "secret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup = %d: %s", w.Code, w.Body.String())
	}
	if out["userId"] == "" || out["userId"] == nil {
		t.Fatal("no userId in signup response")
	}

	w, out = doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email": "a@b.com", "password": "secret",
	})
	if w.Code != http.StatusOK || out["token"] == nil {
		t.Fatalf("login = %d: %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email": "a@b.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d, want 401", w.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	r := newTestRouter(t)

	w, out := doJSON(t, r, http.MethodPost, "/signup", "", map[string]string{
		"email": "nope", "name": "A", "password": "abc",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d, want 422", w.Code)
	}
	data, _ := out["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("data = %v, want both violations", out["data"])
	}
}

func TestStatusEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/status", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", w.Code)
	}

	token := signupAndLogin(t, r, "a@b.com")

	w, out := doJSON(t, r, http.MethodGet, "/status", token, nil)
	if w.Code != http.StatusOK || out["status"] != "I am new!" {
		t.Fatalf("status = %d %v", w.Code, out)
	}

	w, _ = doJSON(t, r, http.MethodPatch, "/status", token, map[string]string{"status": "Hacking"})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d", w.Code)
	}
	_, out = doJSON(t, r, http.MethodGet, "/status", token, nil)
	if out["status"] != "Hacking" {
		t.Fatalf("status after patch = %v", out["status"])
	}
}

func TestFeedCRUD(t *testing.T) {
	r := newTestRouter(t)
	token := signupAndLogin(t, r, "a@b.com")

	// 未登录创建被拒
	w, _ := postMultipart(t, r, http.MethodPost, "/feed/post", "", map[string]string{
		"title": "Hello world", "content": "Some content here",
	}, true)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated create = %d, want 401", w.Code)
	}

	// 缺图 422
	w, _ = postMultipart(t, r, http.MethodPost, "/feed/post", token, map[string]string{
		"title": "Hello world", "content": "Some content here",
	}, false)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no image = %d, want 422", w.Code)
	}

	// 短标题 422，且 data 里有 Title is invalid.
	w, out := postMultipart(t, r, http.MethodPost, "/feed/post", token, map[string]string{
		"title": "Hi", "content": "Hello",
	}, true)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("short fields = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Title is invalid.") {
		t.Fatalf("missing field message: %s", w.Body.String())
	}

	// 正常创建
	w, out = postMultipart(t, r, http.MethodPost, "/feed/post", token, map[string]string{
		"title": "Hello world", "content": "Some content here",
	}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	post, _ := out["post"].(map[string]any)
	postID, _ := post["_id"].(string)
	if postID == "" {
		t.Fatalf("no post id: %v", out)
	}
	creator, _ := out["creator"].(map[string]any)
	if creator["name"] != "Tester" {
		t.Fatalf("creator = %v", creator)
	}

	// 列表带总数
	w, out = doJSON(t, r, http.MethodGet, "/feed/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if out["totalItems"] != float64(1) {
		t.Fatalf("totalItems = %v", out["totalItems"])
	}

	// 单查
	w, _ = doJSON(t, r, http.MethodGet, "/feed/post/"+postID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}

	// 非作者改删 → 403
	other := signupAndLogin(t, r, "c@d.com")
	w, _ = postMultipart(t, r, http.MethodPut, "/feed/post/"+postID, other, map[string]string{
		"title": "Stolen title", "content": "Stolen content", "image": "uploads/x.png",
	}, false)
	if w.Code != http.StatusForbidden {
		t.Fatalf("update by non-owner = %d, want 403", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodDelete, "/feed/post/"+postID, other, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete by non-owner = %d, want 403", w.Code)
	}

	// 作者更新
	w, out = postMultipart(t, r, http.MethodPut, "/feed/post/"+postID, token, map[string]string{
		"title": "Edited title", "content": "Edited content", "image": "uploads/x.png",
	}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", w.Code, w.Body.String())
	}

	// 作者删除，随后 404
	w, _ = doJSON(t, r, http.MethodDelete, "/feed/post/"+postID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/feed/post/"+postID, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("after delete = %d, want 404", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s = %d", path, w.Code)
		}
	}
}
