package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/extract"
	"quiz-review-service/internal/infra/memory"
)

const reviewPage = `<div class="breadcrumbs-container"><ol class="breadcrumb"><li class="breadcrumb-item">Dashboard</li></ol></div>
<div class="que">
  <div class="info"><div class="grade">Mark 1.00 out of 1.00</div></div>
  <div class="content"><div class="qtext">2 + 2?</div><div class="answer"><div class="r1">4</div></div></div>
</div>`

func TestReviewAPIFlow(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterOptions{}))
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/reviews", "text/html", strings.NewReader(reviewPage))
	if err != nil {
		t.Fatalf("post review: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		ID    string `json:"id"`
		Paper struct {
			Breadcrumbs []string `json:"breadcrumbs"`
			Questions   []struct {
				State string `json:"state"`
			} `json:"questions"`
		} `json:"paper"`
		Tally struct {
			Correct int `json:"correct"`
		} `json:"tally"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || resp.Header.Get("Location") != "/v1/reviews/"+created.ID {
		t.Fatalf("unexpected id %q / location %q", created.ID, resp.Header.Get("Location"))
	}
	if len(created.Paper.Questions) != 1 || created.Paper.Questions[0].State != "Correct" || created.Tally.Correct != 1 {
		t.Fatalf("unexpected paper %+v", created)
	}

	get, err := http.Get(server.URL + "/v1/reviews/" + created.ID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.StatusCode)
	}

	missing, err := http.Get(server.URL + "/v1/reviews/unknown")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.StatusCode)
	}
}

func TestExtractEndpoint(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterOptions{MaxBodyBytes: 2 << 10}))
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/extract", "text/html", strings.NewReader(reviewPage))
	if err != nil {
		t.Fatalf("post extract: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["paper"]; !ok {
		t.Fatalf("expected paper in response, got %v", body)
	}

	empty, err := http.Post(server.URL+"/v1/extract", "text/html", strings.NewReader("   "))
	if err != nil {
		t.Fatalf("post empty: %v", err)
	}
	empty.Body.Close()
	if empty.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", empty.StatusCode)
	}

	huge, err := http.Post(server.URL+"/v1/extract", "text/html", strings.NewReader(strings.Repeat("x", 8<<10)))
	if err != nil {
		t.Fatalf("post huge: %v", err)
	}
	huge.Body.Close()
	if huge.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", huge.StatusCode)
	}
}

func TestWebSocketIngestFlow(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterOptions{}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "ready")

	msg := map[string]any{
		"type":    "ingest",
		"payload": map[string]any{"html": reviewPage},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write ingest: %v", err)
	}

	storedSeen := false
	ingestedSeen := false
	for i := 0; i < 2; i++ {
		typ, _ := readNext(conn, t, "")
		switch typ {
		case "stored":
			storedSeen = true
		case "ingested":
			ingestedSeen = true
		}
	}
	if !storedSeen || !ingestedSeen {
		t.Fatalf("expected stored and ingested, got stored=%v ingested=%v", storedSeen, ingestedSeen)
	}

	if err := conn.WriteJSON(map[string]any{"type": "extract", "payload": map[string]any{"html": ""}}); err != nil {
		t.Fatalf("write extract: %v", err)
	}
	readNext(conn, t, "error")
}

func TestWebSocketRejectsOversizedPage(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterOptions{MaxBodyBytes: 2 << 10}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "ready")

	msg := map[string]any{
		"type":    "extract",
		"payload": map[string]any{"html": strings.Repeat("x", 8<<10)},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write extract: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var reply map[string]any
		err := conn.ReadJSON(&reply)
		if err == nil {
			if reply["type"] == "paper" {
				t.Fatalf("oversized page was extracted")
			}
			continue
		}
		// The server answers with close code 1009, though a reset may win the race.
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			t.Fatalf("connection stayed open after oversized message")
		}
		return
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestService() *app.ReviewService {
	store := memory.NewPaperStore()
	repo := memory.NewPaperRepository(store, time.Minute)
	return app.NewReviewService(extract.New(extract.Options{}), store, repo)
}
