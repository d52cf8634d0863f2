package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/pkg/config"
)

func TestAfricasTalkingGateway_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != messagingPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apiKey") != "key-123" {
			t.Errorf("missing apiKey header")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("username") != "sandbox" || r.PostForm.Get("to") != "+254722000111" || r.PostForm.Get("message") != "hello" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"SMSMessageData":{"Message":"Sent to 1/1"}}`))
	}))
	defer srv.Close()

	g := NewAfricasTalkingGateway(AfricasTalkingConfig{BaseURL: srv.URL, Username: "sandbox", APIKey: "key-123"})
	receipt, err := g.Send(context.Background(), domain.SMSMessage{To: "+254722000111", Message: "hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !receipt.Success || receipt.Provider != ProviderAfricasTalking || receipt.Payload == "" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestAfricasTalkingGateway_FailureNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("The supplied authentication is invalid"))
	}))
	defer srv.Close()

	g := NewAfricasTalkingGateway(AfricasTalkingConfig{BaseURL: srv.URL, Username: "sandbox", APIKey: "bad"})
	_, err := g.Send(context.Background(), domain.SMSMessage{To: "+254722000111", Message: "hello"})

	var df *domain.DispatchFailure
	if !errors.As(err, &df) || df.Provider != ProviderAfricasTalking {
		t.Fatalf("expected DispatchFailure, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one call, got %d", n)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	g, err := New(config.SMSConfig{Provider: "mock"}, zerolog.Nop())
	if err != nil || g.Provider() != ProviderMock {
		t.Fatalf("expected mock gateway, got %v (%v)", g, err)
	}
	receipt, err := g.Send(context.Background(), domain.SMSMessage{To: "+254700000000", Message: "x"})
	if err != nil || !receipt.Success {
		t.Fatalf("mock send: %+v %v", receipt, err)
	}

	g, err = New(config.SMSConfig{Provider: "africastalking", BaseURL: "http://localhost"}, zerolog.Nop())
	if err != nil || g.Provider() != ProviderAfricasTalking {
		t.Fatalf("expected africastalking gateway, got %v", err)
	}

	if _, err := New(config.SMSConfig{Provider: "carrier-pigeon"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
