package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req chatReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "llama3.2" || req.Stream {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(chatResp{Message: Message{Role: "assistant", Content: "hola"}})
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "llama3.2")
	out, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "eres un vendedor"},
		{Role: "user", Content: "hola"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != "hola" {
		t.Errorf("reply = %q", out)
	}
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewChatClient(srv.URL, "llama3.2").Chat(context.Background(), nil); err == nil {
		t.Fatal("expected error on 500")
	}
}
