package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"tasktrack/internal/backend/supabase"
	"tasktrack/internal/service"
)

const (
	testKey   = "anon-key"
	testOwner = "8c3f0c1e-0000-4000-8000-000000000001"
)

// fakeProject emulates the GoTrue and PostgREST endpoints used by the client.
type fakeProject struct {
	mu       sync.Mutex
	rows     []map[string]any
	nextID   int
	access   string
	refresh  string
	requests []string

	// rawList, when set, is returned verbatim from the list endpoint.
	rawList string
}

func (p *fakeProject) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Query().Get("grant_type") {
		case "password":
			if body["email"] != "u1@example.com" || body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
				return
			}
		case "refresh_token":
			p.mu.Lock()
			ok := body["refresh_token"] == p.refresh
			p.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"msg":"Invalid Refresh Token"}`)
				return
			}
		}
		p.mu.Lock()
		p.nextID++
		p.access = fmt.Sprintf("access-%d", p.nextID)
		p.refresh = fmt.Sprintf("refresh-%d", p.nextID)
		resp := map[string]any{
			"access_token":  p.access,
			"token_type":    "bearer",
			"expires_in":    3600,
			"refresh_token": p.refresh,
			"user":          map[string]string{"id": testOwner, "email": "u1@example.com"},
		}
		p.mu.Unlock()
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if !p.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"msg":"invalid JWT"}`)
			return
		}
		fmt.Fprintf(w, `{"id":%q,"email":"u1@example.com"}`, testOwner)
	})

	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.access = ""
		p.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/rest/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.requests = append(p.requests, r.Method+" "+r.URL.RawQuery)
		p.mu.Unlock()
		if r.Header.Get("apikey") != testKey {
			t.Errorf("missing apikey header on %s", r.Method)
		}
		if !p.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"JWT expired"}`)
			return
		}
		q := r.URL.Query()
		p.mu.Lock()
		defer p.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			if p.rawList != "" {
				fmt.Fprint(w, p.rawList)
				return
			}
			var out []map[string]any
			for i := len(p.rows) - 1; i >= 0; i-- {
				if "eq."+p.rows[i]["user_id"].(string) == q.Get("user_id") {
					out = append(out, p.rows[i])
				}
			}
			if out == nil {
				out = []map[string]any{}
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var body []map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			p.nextID++
			row := map[string]any{
				"id":           p.nextID,
				"title":        body[0]["title"],
				"user_id":      body[0]["user_id"],
				"is_completed": false,
				"created_at":   time.Date(2024, 5, 1, 12, 0, p.nextID, 0, time.UTC).Format("2006-01-02T15:04:05.000000+00:00"),
			}
			p.rows = append(p.rows, row)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode([]map[string]any{row})
		case http.MethodPatch:
			var body map[string]bool
			json.NewDecoder(r.Body).Decode(&body)
			for _, row := range p.rows {
				if q.Get("id") == fmt.Sprintf("eq.%v", row["id"]) && q.Get("user_id") == "eq."+row["user_id"].(string) {
					row["is_completed"] = body["is_completed"]
				}
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			kept := p.rows[:0]
			for _, row := range p.rows {
				if q.Get("id") == fmt.Sprintf("eq.%v", row["id"]) && q.Get("user_id") == "eq."+row["user_id"].(string) {
					continue
				}
				kept = append(kept, row)
			}
			p.rows = kept
			w.WriteHeader(http.StatusNoContent)
		}
	})
	return mux
}

func (p *fakeProject) authorized(r *http.Request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.access != "" && r.Header.Get("Authorization") == "Bearer "+p.access
}

func newClient(t *testing.T, p *fakeProject) (*supabase.Client, string) {
	t.Helper()
	srv := httptest.NewServer(p.handler(t))
	t.Cleanup(srv.Close)

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	client, err := supabase.New(supabase.Options{
		URL:       srv.URL + "/",
		APIKey:    testKey,
		TokenPath: tokenPath,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, tokenPath
}

func TestNew_MissingSettings(t *testing.T) {
	_, err := supabase.New(supabase.Options{URL: "https://x.supabase.co"})
	if !errors.Is(err, service.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "SUPABASE_ANON_KEY") {
		t.Errorf("expected message to name the missing key, got %q", err.Error())
	}
}

func TestCurrentUser_NoSession(t *testing.T) {
	client, _ := newClient(t, &fakeProject{})

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected no user, got %+v", user)
	}
}

func TestSignIn_PersistsSession(t *testing.T) {
	p := &fakeProject{}
	client, tokenPath := newClient(t, p)
	ctx := context.Background()

	if err := client.SignInWithCredentials(ctx, "u1@example.com", "wrong"); err == nil {
		t.Fatal("expected error for bad password")
	}
	if err := client.SignInWithCredentials(ctx, "u1@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if _, err := os.Stat(tokenPath); err != nil {
		t.Fatalf("expected token file: %v", err)
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user == nil || user.ID != testOwner {
		t.Fatalf("unexpected user %+v", user)
	}

	// A fresh client reads the stored session.
	reopened, err := supabase.New(supabase.Options{URL: client.URL(), APIKey: testKey, TokenPath: tokenPath})
	if err != nil {
		t.Fatal(err)
	}
	user, err = reopened.CurrentUser(ctx)
	if err != nil || user == nil {
		t.Fatalf("expected stored session to resolve, got %+v, %v", user, err)
	}
}

func TestSignOut_RemovesSession(t *testing.T) {
	p := &fakeProject{}
	client, tokenPath := newClient(t, p)
	ctx := context.Background()

	if err := client.SignInWithCredentials(ctx, "u1@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := client.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("expected token file to be removed, got %v", err)
	}
	user, err := client.CurrentUser(ctx)
	if err != nil || user != nil {
		t.Errorf("expected no user after sign out, got %+v, %v", user, err)
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	p := &fakeProject{}
	client, _ := newClient(t, p)
	ctx := context.Background()

	if err := client.SignInWithCredentials(ctx, "u1@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	first, err := client.Insert(ctx, "Buy milk", testOwner)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == "" || first.Title != "Buy milk" || first.OwnerID != testOwner || first.CreatedAt.IsZero() {
		t.Errorf("unexpected inserted task %+v", first)
	}
	second, err := client.Insert(ctx, "Walk dog", testOwner)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := client.UpdateCompletion(ctx, testOwner, first.ID, true); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks, err := client.ListByOwner(ctx, testOwner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Fatalf("unexpected list %+v", tasks)
	}
	if !tasks[1].IsCompleted {
		t.Error("expected first task to be completed")
	}

	if err := client.DeleteByID(ctx, testOwner, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, err = client.ListByOwner(ctx, testOwner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != second.ID {
		t.Errorf("unexpected list after delete %+v", tasks)
	}

	for _, req := range p.requests {
		if strings.HasPrefix(req, "PATCH") || strings.HasPrefix(req, "DELETE") {
			if !strings.Contains(req, "user_id=eq.") {
				t.Errorf("write not scoped to owner: %s", req)
			}
		}
	}
}

func TestListByOwner_SkipsMalformedRows(t *testing.T) {
	p := &fakeProject{}
	client, _ := newClient(t, p)
	ctx := context.Background()

	if err := client.SignInWithCredentials(ctx, "u1@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	p.mu.Lock()
	p.rawList = `[
		{"id": "a", "title": "ok", "is_completed": true, "user_id": "` + testOwner + `", "created_at": "2024-05-01T12:00:00.123456"},
		{"id": "b", "title": "no flag", "user_id": "` + testOwner + `", "created_at": "2024-05-01T12:00:00+00:00"},
		{"title": "no id", "is_completed": false, "user_id": "` + testOwner + `", "created_at": "2024-05-01T12:00:00+00:00"},
		{"id": "c", "title": "bad time", "is_completed": false, "user_id": "` + testOwner + `", "created_at": "yesterday"}
	]`
	p.mu.Unlock()

	tasks, err := client.ListByOwner(ctx, testOwner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "a" || !tasks[0].IsCompleted {
		t.Fatalf("expected only the well-formed row, got %+v", tasks)
	}
	want := time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)
	if !tasks[0].CreatedAt.Equal(want) {
		t.Errorf("expected zoneless timestamp as UTC %v, got %v", want, tasks[0].CreatedAt)
	}
}

func TestStorage_WithoutSession(t *testing.T) {
	client, _ := newClient(t, &fakeProject{})

	_, err := client.ListByOwner(context.Background(), testOwner)
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestExpiredSessionRefreshes(t *testing.T) {
	p := &fakeProject{}
	client, tokenPath := newClient(t, p)
	ctx := context.Background()

	if err := client.SignInWithCredentials(ctx, "u1@example.com", "secret"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	// Rewrite the stored token as expired and reopen.
	p.mu.Lock()
	stale := fmt.Sprintf(`{"access_token":"stale","token_type":"bearer","refresh_token":%q,"expiry":"2000-01-01T00:00:00Z"}`, p.refresh)
	p.mu.Unlock()
	if err := os.WriteFile(tokenPath, []byte(stale), 0600); err != nil {
		t.Fatal(err)
	}
	reopened, err := supabase.New(supabase.Options{URL: client.URL(), APIKey: testKey, TokenPath: tokenPath})
	if err != nil {
		t.Fatal(err)
	}

	user, err := reopened.CurrentUser(ctx)
	if err != nil || user == nil {
		t.Fatalf("expected refreshed session, got %+v, %v", user, err)
	}
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "stale") {
		t.Error("expected refreshed token to be persisted")
	}
}
