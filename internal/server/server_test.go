package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{Addr: ":0"})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestIndexServed(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func waitForJob(t *testing.T, ts *httptest.Server, jobID string) Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/books/" + jobID)
		if err != nil {
			t.Fatal(err)
		}
		var job Job
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			resp.Body.Close()
			t.Fatal(err)
		}
		resp.Body.Close()
		if job.Status == JobStatusComplete || job.Status == JobStatusFailed {
			return job
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return Job{}
}

func TestCreateBookAndFetchText(t *testing.T) {
	_, ts := newTestServer(t)

	body := strings.NewReader(`{"word_target": 2000, "seed": 9}`)
	resp, err := http.Post(ts.URL+"/api/books", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var created createBookResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.JobID == "" {
		t.Fatal("response missing job_id")
	}
	if created.PollURL != "/api/books/"+created.JobID {
		t.Errorf("poll_url = %q", created.PollURL)
	}

	job := waitForJob(t, ts, created.JobID)
	if job.Status != JobStatusComplete {
		t.Fatalf("job finished %s: %s", job.Status, job.Error)
	}
	if job.Result == nil || job.Result.WordCount < 2000 {
		t.Errorf("job result = %+v, want word count >= 2000", job.Result)
	}

	textResp, err := http.Get(ts.URL + "/api/books/" + created.JobID + "/text")
	if err != nil {
		t.Fatal(err)
	}
	defer textResp.Body.Close()
	if textResp.StatusCode != http.StatusOK {
		t.Fatalf("text status = %d, want 200", textResp.StatusCode)
	}
	text, err := io.ReadAll(textResp.Body)
	if err != nil {
		t.Fatal(err)
	}
	// Front-matter sections precede Chapter 1, so check presence, not prefix.
	if !strings.Contains(string(text), "## Chapter 1 (#") {
		t.Error("book text has no Chapter 1 heading")
	}
}

func TestCreateBookRejectsBadInput(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"negative target", `{"word_target": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/books", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetJobNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/books/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetTextBeforeComplete(t *testing.T) {
	s, ts := newTestServer(t)

	job := s.jobs.Create(1000, 0)
	resp, err := http.Get(ts.URL + "/api/books/" + job.ID + "/text")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	s, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the hub to register the client before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for s.hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.hub.Broadcast(SectionMessage{
		Type:       "section",
		JobID:      "job-1",
		Kind:       "glossary",
		SectionID:  321,
		Words:      150,
		TotalWords: 4200,
	})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg SectionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	if msg.Type != "section" || msg.SectionID != 321 || msg.TotalWords != 4200 {
		t.Errorf("message = %+v", msg)
	}
	if msg.Timestamp == "" {
		t.Error("broadcast did not stamp the message")
	}
}
