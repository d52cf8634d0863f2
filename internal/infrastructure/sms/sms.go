// Package sms provides the SMS gateway adapters.
package sms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/pkg/config"
)

const (
	ProviderMock           = "mock"
	ProviderAfricasTalking = "africastalking"

	messagingPath = "/version1/messaging"
)

// New returns the gateway selected by cfg.Provider.
func New(cfg config.SMSConfig, log zerolog.Logger) (ports.SMSGateway, error) {
	switch cfg.Provider {
	case "", ProviderMock:
		return NewMockGateway(log), nil
	case ProviderAfricasTalking:
		return NewAfricasTalkingGateway(AfricasTalkingConfig{
			BaseURL:  cfg.BaseURL,
			Username: cfg.Username,
			APIKey:   cfg.APIKey,
			SenderID: cfg.SenderID,
			Timeout:  cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("sms: unknown provider %q", cfg.Provider)
	}
}

// MockGateway logs messages instead of sending them.
type MockGateway struct {
	log zerolog.Logger
}

func NewMockGateway(log zerolog.Logger) *MockGateway {
	return &MockGateway{log: log}
}

func (g *MockGateway) Provider() string { return ProviderMock }

func (g *MockGateway) Send(_ context.Context, msg domain.SMSMessage) (*domain.SMSReceipt, error) {
	g.log.Info().Str("to", msg.To).Str("message", msg.Message).Msg("mock sms")
	return &domain.SMSReceipt{Success: true, Provider: ProviderMock}, nil
}

type AfricasTalkingConfig struct {
	BaseURL  string
	Username string
	APIKey   string
	// SenderID is the optional alphanumeric sender; empty uses the account default.
	SenderID string
	Timeout  time.Duration
}

// AfricasTalkingGateway sends through the Africa's Talking messaging API.
// Failed sends are not retried.
type AfricasTalkingGateway struct {
	client   *resty.Client
	username string
	senderID string
}

func NewAfricasTalkingGateway(cfg AfricasTalkingConfig) *AfricasTalkingGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("apiKey", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &AfricasTalkingGateway{
		client:   client,
		username: cfg.Username,
		senderID: cfg.SenderID,
	}
}

func (g *AfricasTalkingGateway) Provider() string { return ProviderAfricasTalking }

func (g *AfricasTalkingGateway) Send(ctx context.Context, msg domain.SMSMessage) (*domain.SMSReceipt, error) {
	form := map[string]string{
		"username": g.username,
		"to":       msg.To,
		"message":  msg.Message,
	}
	if g.senderID != "" {
		form["from"] = g.senderID
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		Post(messagingPath)
	if err != nil {
		return nil, &domain.DispatchFailure{Provider: ProviderAfricasTalking, Err: err}
	}

	body := resp.String()
	if resp.IsError() {
		return nil, &domain.DispatchFailure{
			Provider: ProviderAfricasTalking,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode(), body),
		}
	}
	return &domain.SMSReceipt{Success: true, Provider: ProviderAfricasTalking, Payload: body}, nil
}
