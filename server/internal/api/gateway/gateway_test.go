package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"SlideLab/server/internal/pkg/encryption"
	"SlideLab/server/internal/protocol"
	"SlideLab/server/internal/services/attack"
	"SlideLab/server/internal/services/auth"
	"SlideLab/server/internal/storage"
)

type testEnv struct {
	server  *Server
	handler http.Handler
	token   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	authSvc := auth.New("test-secret", "")
	attackSvc := attack.NewService(storage.NewMemory(), encryption.NewReferenceCipher(), 0)
	server := New("127.0.0.1:0", authSvc, attackSvc)

	token, err := authSvc.CreateToken("tester")
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	return &testEnv{server: server, handler: server.Handler(), token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestEncryptEndpoint(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path   string
		block  int
		output int
		rounds int
	}{
		{"/api/encrypt", 0, 115, 100},
		{"/api/encrypt", 81, 53, 100},
		{"/api/encrypt/short", 0, 81, 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %d", tt.path, tt.block), func(t *testing.T) {
			rec := env.do(t, "POST", tt.path, protocol.EncryptRequest{Block: tt.block}, false)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp protocol.EncryptResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Output != tt.output || resp.Rounds != tt.rounds {
				t.Fatalf("Expected %d after %d rounds, got %+v", tt.output, tt.rounds, resp)
			}
		})
	}
}

func TestEncryptRejectsOutOfRangeBlock(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/encrypt", protocol.EncryptRequest{Block: 256}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestDecryptRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/decrypt", protocol.EncryptRequest{Block: 115}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/decrypt", protocol.EncryptRequest{Block: 115}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp protocol.EncryptResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Output != 0 {
		t.Fatalf("Expected decrypt(115) = 0, got %d", resp.Output)
	}
}

func TestCipherInfoHidesKeys(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/cipher", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "keys") {
		t.Fatalf("cipher info exposes keys: %s", rec.Body.String())
	}
}

func TestCorpusAttackFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/corpora", protocol.CorpusCreateRequest{Name: "ref", Plaintexts: []int{0, 81}}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/corpora", protocol.CorpusCreateRequest{Name: "ref", Plaintexts: []int{0, 81}}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var corpus protocol.CorpusRecord
	if err := json.NewDecoder(rec.Body).Decode(&corpus); err != nil {
		t.Fatalf("decode corpus: %v", err)
	}

	rec = env.do(t, "GET", fmt.Sprintf("/api/corpora/%d", corpus.ID), nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for stored corpus, got %d", rec.Code)
	}

	rec = env.do(t, "POST", fmt.Sprintf("/api/corpora/%d/attack", corpus.ID), nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from attack, got %d: %s", rec.Code, rec.Body.String())
	}
	var report protocol.RecoveryReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Confirmed) != 1 || report.Confirmed[0].K0 != 70 || report.Confirmed[0].K1 != 8 {
		t.Fatalf("Expected (70, 8), got %v", report.Confirmed)
	}

	rec = env.do(t, "GET", fmt.Sprintf("/api/corpora/%d/recoveries", corpus.ID), nil, false)
	var recoveries struct {
		Recoveries []protocol.RecoveryRecord `json:"recoveries"`
	}
	json.NewDecoder(rec.Body).Decode(&recoveries)
	if len(recoveries.Recoveries) != 1 {
		t.Fatalf("Expected one stored recovery, got %v", recoveries.Recoveries)
	}

	rec = env.do(t, "POST", "/api/confirm", protocol.ConfirmRequest{CorpusID: corpus.ID, K0: 71, K1: 8}, false)
	var verdict protocol.ConfirmResponse
	json.NewDecoder(rec.Body).Decode(&verdict)
	if rec.Code != http.StatusOK || verdict.Confirmed {
		t.Fatalf("Expected (71, 8) rejected, got %d %+v", rec.Code, verdict)
	}
}

func TestCreateRandomCorpus(t *testing.T) {
	env := newTestEnv(t)
	seed := int64(99)

	var corpora [2]protocol.CorpusRecord
	for i := range corpora {
		rec := env.do(t, "POST", "/api/corpora", protocol.CorpusCreateRequest{Random: 32, Seed: &seed}, true)
		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if err := json.NewDecoder(rec.Body).Decode(&corpora[i]); err != nil {
			t.Fatalf("decode corpus: %v", err)
		}
	}

	if len(corpora[0].Observations) != 32 {
		t.Fatalf("Expected 32 observations, got %d", len(corpora[0].Observations))
	}
	for i := range corpora[0].Observations {
		if corpora[0].Observations[i] != corpora[1].Observations[i] {
			t.Fatalf("observation %d differs for the same seed", i)
		}
	}

	tests := []struct {
		name string
		req  protocol.CorpusCreateRequest
	}{
		{"too many", protocol.CorpusCreateRequest{Random: 257}},
		{"both sources", protocol.CorpusCreateRequest{Random: 4, Plaintexts: []int{1, 2}}},
	}
	for _, tt := range tests {
		if rec := env.do(t, "POST", "/api/corpora", tt.req, true); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, rec.Code)
		}
	}
}

func TestAttackErrorsMapToStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/corpora/42/attack", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown corpus, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/corpora/abc/attack", nil, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for bad corpus ID, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/corpora", protocol.CorpusCreateRequest{Plaintexts: []int{9}}, true)
	var corpus protocol.CorpusRecord
	json.NewDecoder(rec.Body).Decode(&corpus)

	rec = env.do(t, "POST", fmt.Sprintf("/api/corpora/%d/attack", corpus.ID), nil, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for a one-entry corpus, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/confirm", protocol.ConfirmRequest{CorpusID: corpus.ID, K0: 300, K1: 8}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for out-of-range key, got %d", rec.Code)
	}
}

func TestWebSocketReceivesEvents(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with the hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	rec := env.do(t, "POST", "/api/corpora", protocol.CorpusCreateRequest{Name: "ws", Plaintexts: []int{0, 81}}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event protocol.WebSocketEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != protocol.EventCorpusCreated {
		t.Fatalf("Expected %s, got %s", protocol.EventCorpusCreated, event.Type)
	}
}

func TestExtractToken(t *testing.T) {
	if got := extractToken("Bearer abc"); got != "abc" {
		t.Errorf("Expected abc, got %q", got)
	}
	if got := extractToken("Basic abc"); got != "" {
		t.Errorf("Expected empty token, got %q", got)
	}
}
