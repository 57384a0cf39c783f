package router_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	jwtauth "pet-admin-api/internal/adapters/auth/jwt"
	"pet-admin-api/internal/router"

	_ "modernc.org/sqlite"
)

const (
	adminUser = "admin"
	adminPass = "admin-pass"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newServerWithSQLiteDir(t, "")
}

func newServerWithSQLiteDir(t *testing.T, sqliteDir string) *httptest.Server {
	t.Helper()

	h, err := router.NewRouter(context.Background(), router.Options{
		Auth: jwtauth.Config{
			Secret:   []byte("test-secret"),
			Issuer:   "pet-admin-api",
			Subject:  "pet-admin",
			Audience: "pet-admin",
			TTL:      10 * time.Minute,
		},
		CredentialsKey: []byte("0123456789abcdef0123456789abcdef"),
		AdminUsername:  adminUser,
		AdminPassword:  adminPass,
		SQLiteDir:      sqliteDir,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_HealthAndSwaggerArePublic(t *testing.T) {
	ts := newServer(t)

	if st, body := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200 health, got %d body=%s", st, body)
	}
	if st, body := doReq(t, ts.URL, "GET", "/swagger/doc.json", "", nil); st != http.StatusOK || !strings.Contains(string(body), `"/login"`) {
		t.Fatalf("expected swagger doc, got %d body=%.200s", st, body)
	}
}

func TestHTTP_Login(t *testing.T) {
	ts := newServer(t)

	st, env := doEnv(t, ts.URL, "POST", "/api/login", "", map[string]any{"username": adminUser, "password": "nope"})
	if st != http.StatusUnauthorized || env.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on wrong password, got %d %+v", st, env)
	}

	st, env = doEnv(t, ts.URL, "POST", "/api/login", "", map[string]any{"username": "", "password": ""})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 on missing credentials, got %d %+v", st, env)
	}

	st, env = doEnv(t, ts.URL, "POST", "/api/login", "", map[string]any{"username": adminUser, "password": adminPass})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d %+v", st, env)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	_ = json.Unmarshal(env.Data, &tok)
	if tok.AccessToken == "" || tok.TokenType != "Bearer" {
		t.Fatalf("unexpected token payload %s", env.Data)
	}
}

func TestHTTP_GateRejectsMissingOrBadToken(t *testing.T) {
	ts := newServer(t)

	st, env := doEnv(t, ts.URL, "GET", "/api/pet", "", nil)
	if st != http.StatusUnauthorized || env.Message != "missing Authorization header" {
		t.Fatalf("expected 401 missing header, got %d %+v", st, env)
	}

	st, env = doEnv(t, ts.URL, "GET", "/api/pet", "not-a-jwt", nil)
	if st != http.StatusUnauthorized || !strings.HasPrefix(env.Message, "token verification failed: ") {
		t.Fatalf("expected 401 verification failed, got %d %+v", st, env)
	}
}

func TestHTTP_GateDeniesPathsWithoutPermission(t *testing.T) {
	ts := newServer(t)
	admin := login(t, ts.URL, adminUser, adminPass)

	st, body := doReq(t, ts.URL, "POST", "/api/user", admin, map[string]any{
		"username":    "bob",
		"password":    "bob-pass",
		"first_name":  "Bob",
		"active":      true,
		"permissions": []string{"/pet_type"},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create user, got %d body=%s", st, body)
	}

	bob := login(t, ts.URL, "bob", "bob-pass")

	st, env := doEnv(t, ts.URL, "GET", "/api/pet", bob, nil)
	if st != http.StatusUnauthorized || env.Message != "unauthorized url: /pet" {
		t.Fatalf("expected 401 unauthorized url, got %d %+v", st, env)
	}

	if st, body := doReq(t, ts.URL, "GET", "/api/pet_type", bob, nil); st != http.StatusOK {
		t.Fatalf("expected 200 on /pet_type, got %d body=%s", st, body)
	}

	// "/pet_type" exacto no cubre las rutas hijas
	if st, _ := doReq(t, ts.URL, "GET", "/api/pet_type/1", bob, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 on /pet_type/1, got %d", st)
	}
}

func TestHTTP_PetLifecycle(t *testing.T) {
	ts := newServer(t)
	admin := login(t, ts.URL, adminUser, adminPass)

	// 1) crear
	st, env := doEnv(t, ts.URL, "POST", "/api/pet", admin, map[string]any{"name": "Milo", "birth_date": "2021-04-01"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create pet, got %d %+v", st, env)
	}
	var pet struct {
		ID        int64 `json:"pet_id"`
		Version   int64 `json:"version"`
		CreatedBy int64 `json:"created_by"`
	}
	_ = json.Unmarshal(env.Data, &pet)
	if pet.ID == 0 || pet.Version != 1 || pet.CreatedBy == 0 {
		t.Fatalf("unexpected created pet %s", env.Data)
	}
	id := strconv.FormatInt(pet.ID, 10)

	// 2) validación: name vacío
	if st, env := doEnv(t, ts.URL, "POST", "/api/pet", admin, map[string]any{"name": ""}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 empty name, got %d %+v", st, env)
	}

	// 3) actualizar sube la versión
	st, env = doEnv(t, ts.URL, "PUT", "/api/pet", admin, map[string]any{"pet_id": pet.ID, "name": "Milo II"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update pet, got %d %+v", st, env)
	}
	_ = json.Unmarshal(env.Data, &pet)
	if pet.Version != 2 {
		t.Fatalf("expected version 2 after update, got %d", pet.Version)
	}

	// 4) borrado lógico: desaparece de detalle y listado
	if st, body := doReq(t, ts.URL, "DELETE", "/api/pet/"+id, admin, nil); st != http.StatusOK {
		t.Fatalf("expected 200 soft delete, got %d body=%s", st, body)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/api/pet/"+id, admin, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 after soft delete, got %d", st)
	}
	_, env = doEnv(t, ts.URL, "GET", "/api/pet", admin, nil)
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty list after soft delete, got %s", env.Data)
	}

	// 5) borrado físico sigue alcanzando la fila
	if st, body := doReq(t, ts.URL, "DELETE", "/api/pet/delete/"+id, admin, nil); st != http.StatusOK {
		t.Fatalf("expected 200 hard delete, got %d body=%s", st, body)
	}
	if st, _ := doReq(t, ts.URL, "DELETE", "/api/pet/delete/"+id, admin, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 on second hard delete, got %d", st)
	}
}

func TestHTTP_DataSourceTestConnection(t *testing.T) {
	dir := t.TempDir()
	ts := newServerWithSQLiteDir(t, dir)
	admin := login(t, ts.URL, adminUser, adminPass)

	path := filepath.Join(dir, "source.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE orders (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	_ = db.Close()

	st, env := doEnv(t, ts.URL, "POST", "/api/datasource", admin, map[string]any{
		"code":        "local",
		"name":        "Local sqlite",
		"db_type":     "sqlite",
		"db_name":     path,
		"db_password": "unused",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create datasource, got %d %+v", st, env)
	}
	if strings.Contains(string(env.Data), "unused") {
		t.Fatalf("password leaked in response: %s", env.Data)
	}
	var ds struct {
		ID int64 `json:"data_source_id"`
	}
	_ = json.Unmarshal(env.Data, &ds)

	st, env = doEnv(t, ts.URL, "GET", "/api/datasource/test/"+strconv.FormatInt(ds.ID, 10), admin, nil)
	if st != http.StatusOK || string(env.Data) != "true" {
		t.Fatalf("expected successful probe, got %d %+v", st, env)
	}
}

func TestHTTP_LogoutRevokesToken(t *testing.T) {
	ts := newServer(t)
	admin := login(t, ts.URL, adminUser, adminPass)

	if st, body := doReq(t, ts.URL, "POST", "/api/logout", admin, nil); st != http.StatusOK {
		t.Fatalf("expected 200 logout, got %d body=%s", st, body)
	}

	st, env := doEnv(t, ts.URL, "GET", "/api/pet", admin, nil)
	if st != http.StatusUnauthorized || env.Message != "token verification failed: token revoked" {
		t.Fatalf("expected revoked token rejected, got %d %+v", st, env)
	}
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	st, env := doEnv(t, baseURL, "POST", "/api/login", "", map[string]any{"username": username, "password": password})
	if st != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %+v", username, st, env)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	_ = json.Unmarshal(env.Data, &tok)
	return tok.AccessToken
}

func doEnv(t *testing.T, baseURL, method, path, token string, body any) (int, envelope) {
	t.Helper()

	st, raw := doReq(t, baseURL, method, path, token, body)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, raw)
	}
	if env.Code != st {
		t.Fatalf("envelope code %d does not match status %d", env.Code, st)
	}
	return st, env
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func TestHTTP_UserActiveRequiredOnCreateKeptOnUpdate(t *testing.T) {
	ts := newServer(t)
	admin := login(t, ts.URL, adminUser, adminPass)

	st, env := doEnv(t, ts.URL, "POST", "/api/user", admin, map[string]any{
		"username": "dora", "password": "dora-pass",
	})
	if st != http.StatusBadRequest || !strings.Contains(env.Message, "active") {
		t.Fatalf("expected 400 without active, got %d %+v", st, env)
	}

	st, env = doEnv(t, ts.URL, "POST", "/api/user", admin, map[string]any{
		"username": "dora", "password": "dora-pass", "active": true,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create user, got %d %+v", st, env)
	}
	var created struct {
		ID int64 `json:"user_id"`
	}
	_ = json.Unmarshal(env.Data, &created)

	st, env = doEnv(t, ts.URL, "PUT", "/api/user", admin, map[string]any{
		"user_id": created.ID, "username": "dora", "first_name": "Dora",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 update, got %d %+v", st, env)
	}

	_ = login(t, ts.URL, "dora", "dora-pass")
}

func TestHTTP_DataSourceSQLiteOutsideDirRefused(t *testing.T) {
	root := t.TempDir()
	allowed := filepath.Join(root, "sources")
	if err := os.Mkdir(allowed, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ts := newServerWithSQLiteDir(t, allowed)
	admin := login(t, ts.URL, adminUser, adminPass)

	st, env := doEnv(t, ts.URL, "POST", "/api/datasource", admin, map[string]any{
		"code":        "escape",
		"name":        "Escape",
		"db_type":     "sqlite",
		"db_name":     "../secrets.db",
		"db_password": "unused",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 create datasource, got %d %+v", st, env)
	}
	var ds struct {
		ID int64 `json:"data_source_id"`
	}
	_ = json.Unmarshal(env.Data, &ds)

	st, env = doEnv(t, ts.URL, "GET", "/api/datasource/test/"+strconv.FormatInt(ds.ID, 10), admin, nil)
	if st != http.StatusInternalServerError || !strings.Contains(env.Message, "outside the allowed directory") {
		t.Fatalf("expected probe refused, got %d %+v", st, env)
	}
	if _, err := os.Stat(filepath.Join(root, "secrets.db")); !os.IsNotExist(err) {
		t.Fatalf("probe must not create files outside the allowed dir: %v", err)
	}
}
