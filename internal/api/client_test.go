package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixil98/go-testutil"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func TestClient_BearerHeader(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`{"stats_json":"{}"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticTokens("T1"))
	_, err := client.LoadStats(context.Background(), "w1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "authorization header", gotAuth, "Bearer T1")
	if gotRequestID == "" {
		t.Error("expected an X-Request-Id header")
	}
}

func TestClient_NoTokenOmitsHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, staticTokens(""))
	_, err := client.LoadStats(context.Background(), "w1", "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "authorization header", gotAuth, "")
}

func TestClient_StatusKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuth},
		{"conflict", http.StatusConflict, KindDuplicate},
		{"server error", http.StatusInternalServerError, KindNetwork},
		{"not found", http.StatusNotFound, KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			_, err := client.LoadStats(context.Background(), "w1", "c1")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !IsKind(err, tt.kind) {
				t.Errorf("expected kind %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestClient_EmptyKeysAbortBeforeIO(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	_, err := client.LoadStats(context.Background(), "", "c1")
	if !IsKind(err, KindConfig) {
		t.Errorf("expected config failure for empty world key, got %v", err)
	}

	err = client.SaveStats(context.Background(), "w1", "", "{}")
	if !IsKind(err, KindConfig) {
		t.Errorf("expected config failure for empty character key, got %v", err)
	}
}

func TestClient_NormalizeNoData(t *testing.T) {
	for _, body := range []string{"", "null", "{}", "  "} {
		t.Run("body "+body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			stats, err := client.LoadStats(context.Background(), "w1", "c1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "stats", stats, "")
		})
	}
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, "path", r.URL.Path, "/auth/login")
		testutil.AssertEqual(t, "method", r.Method, http.MethodPost)

		var payload map[string]string
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("bad login payload: %v", err)
		}
		testutil.AssertEqual(t, "username", payload["username"], "alice")
		testutil.AssertEqual(t, "password", payload["password"], "pw123")

		_, _ = w.Write([]byte(`{"access_token":"T1","refresh_token":"R1","id":"u1","username":"alice"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	resp, err := client.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, refresh := resp.Tokens()
	testutil.AssertEqual(t, "access token", access, "T1")
	testutil.AssertEqual(t, "refresh token", refresh, "R1")
	testutil.AssertEqual(t, "user id", resp.ID, "u1")
}

func TestClient_LoginLegacyFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"T2","refresh":"R2"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	resp, err := client.Login(context.Background(), "alice", "pw123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, refresh := resp.Tokens()
	testutil.AssertEqual(t, "access token", access, "T2")
	testutil.AssertEqual(t, "refresh token", refresh, "R2")
}

func TestClient_LoginFailureKeepsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	resp, err := client.Login(context.Background(), "alice", "wrong")
	if !IsKind(err, KindAuth) {
		t.Fatalf("expected auth failure, got %v", err)
	}
	testutil.AssertEqual(t, "server error text", resp.Error, "invalid credentials")
}

func TestDecodeAuth_SubstringFallback(t *testing.T) {
	// Trailing garbage breaks json.Unmarshal but the token fields are intact.
	raw := []byte(`{"access_token":"T1","refresh_token":"R1",}`)

	resp, err := decodeAuth("login", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "access token", resp.AccessToken, "T1")
	testutil.AssertEqual(t, "refresh token", resp.RefreshToken, "R1")
}

func TestDecodeAuth_ParseFailure(t *testing.T) {
	_, err := decodeAuth("login", []byte(`not json at all`))
	if !IsKind(err, KindParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestClient_SaveCharacterEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("bad save payload: %v", err)
		}
		testutil.AssertEqual(t, "world key", payload["world_key"], "w1")

		// character_data is itself a JSON document carried as a string.
		var ch Character
		if err := json.Unmarshal([]byte(payload["character_data"]), &ch); err != nil {
			t.Fatalf("character_data is not decodable JSON: %v", err)
		}
		testutil.AssertEqual(t, "character name", ch.CharacterName, "Bran")
		testutil.AssertEqual(t, "class", ch.Name, "Ranger")

		_, _ = w.Write([]byte(`{"characterId":"c1","message":"created"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	id, err := client.SaveCharacter(context.Background(), "w1", &Character{
		CharacterName: "Bran",
		Name:          "Ranger",
		Gender:        "Male",
		Level:         1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "character id", id, "c1")
}

func TestClient_Characters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, "path", r.URL.Path, "/characters/w1")
		_, _ = w.Write([]byte(`[{"CharacterId":"c1","CharacterName":"Bran","Name":"Ranger","Gender":"Male","Level":3}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	chars, err := client.Characters(context.Background(), "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "character count", len(chars), 1)
	testutil.AssertEqual(t, "id", chars[0].CharacterID, "c1")
	testutil.AssertEqual(t, "level", chars[0].Level, 3)
}

func TestClient_CharactersEmptyVariants(t *testing.T) {
	for _, body := range []string{"", "null", "[]"} {
		t.Run("body "+body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, nil)
			chars, err := client.Characters(context.Background(), "w1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "character count", len(chars), 0)
		})
	}
}

func TestClient_InventoryRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			testutil.AssertEqual(t, "path", r.URL.Path, "/inventory")
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			testutil.AssertEqual(t, "path", r.URL.Path, "/inventory/w1/c1/Town")
			_, _ = w.Write([]byte(`{"ui_data":"ui","scene_data":"scene"}`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	err := client.SaveInventory(context.Background(), "w1", "c1", "Town", "ui", "scene")
	if err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	ui, scene, err := client.LoadInventory(context.Background(), "w1", "c1", "Town")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	testutil.AssertEqual(t, "ui data", ui, "ui")
	testutil.AssertEqual(t, "scene data", scene, "scene")
}

func TestClient_LoadStringDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(""))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	val, err := client.LoadString(context.Background(), "InventorySystemSavedKeys", "fallback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", val, "fallback")
}
