package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/nikolayk812/cartengine/internal/wire"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
	serverErrorText  = "Erro no servidor"
)

// ErrEndpointUnavailable is returned while the circuit breaker rejects calls.
var ErrEndpointUnavailable = errors.New("order endpoint unavailable")

// SubmissionError is a non-2xx reply; Message carries the body's error field.
type SubmissionError struct {
	Status  int
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order endpoint status %d: %s", e.Status, e.Message)
}

type HTTPSender struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[struct{}]
	logger   *log.Entry
}

type SenderOption func(*senderConfig)

type senderConfig struct {
	client  *http.Client
	timeout time.Duration
	breaker gobreaker.Settings
	logger  *log.Entry
}

func WithHTTPClient(client *http.Client) SenderOption {
	return func(c *senderConfig) { c.client = client }
}

func WithTimeout(timeout time.Duration) SenderOption {
	return func(c *senderConfig) { c.timeout = timeout }
}

// WithBreakerSettings replaces the circuit breaker settings; Name is kept if empty.
func WithBreakerSettings(settings gobreaker.Settings) SenderOption {
	return func(c *senderConfig) {
		if settings.Name == "" {
			settings.Name = c.breaker.Name
		}
		c.breaker = settings
	}
}

func WithSenderLogger(logger *log.Entry) SenderOption {
	return func(c *senderConfig) { c.logger = logger }
}

func NewHTTPSender(endpoint string, opts ...SenderOption) *HTTPSender {
	cfg := senderConfig{
		timeout: DefaultTimeout,
		breaker: gobreaker.Settings{
			Name:    "order-endpoint",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		},
		logger: log.WithField("component", "order_sender"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{Timeout: cfg.timeout}
	}

	logger := cfg.logger
	settings := cfg.breaker
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		}
	}

	return &HTTPSender{
		endpoint: endpoint,
		client:   client,
		breaker:  gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:   logger,
	}
}

func (s *HTTPSender) Send(ctx context.Context, order domain.OrderRequest) error {
	body, err := json.Marshal(wire.NewOrderEnvelope(order))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.post(ctx, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrEndpointUnavailable, err)
	}

	return err
}

func (s *HTTPSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	var ack wire.Ack
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&ack)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ack.Error
		if decodeErr != nil || msg == "" {
			msg = serverErrorText
		}
		return &SubmissionError{Status: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return fmt.Errorf("malformed response: %w", decodeErr)
	}

	return nil
}
