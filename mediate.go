// Copyright 2025 Mediate Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mediate is an in-process mediator: it routes commands and queries
// to exactly one handler and notifications to zero or more listeners, both
// through an ordered, constraint-aware interceptor pipeline.
package mediate

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/quorate/mediate-go/contracts"
	"github.com/quorate/mediate-go/dispatch"
	"github.com/quorate/mediate-go/inspect"
	"github.com/quorate/mediate-go/interceptors"
	"github.com/quorate/mediate-go/registry"
	"github.com/quorate/mediate-go/stats"
)

// Config enumerates the built-in pipeline concerns. Presets are plain struct
// values; compose them by overwriting fields, later wins.
type Config struct {
	// Logging adds the logging interceptor to both pipelines.
	Logging bool
	// Validation adds struct-tag validation to both pipelines.
	Validation bool
	// Statistics adds the statistics interceptor to both pipelines, feeding
	// the client's tracker.
	Statistics bool
	// RateLimit enables per-message-type rate limiting on the request
	// pipeline when positive.
	RateLimit rate.Limit
	// RateBurst is the token bucket size used with RateLimit.
	RateBurst int
	// Timeout bounds each request dispatch when positive.
	Timeout time.Duration
	// AbortOnListenerFailure stops a publish at the first failing listener
	// instead of running the rest and aggregating.
	AbortOnListenerFailure bool
}

// DevelopmentConfig is the preset for local development: everything
// observable, no throttling.
func DevelopmentConfig() Config {
	return Config{
		Logging:    true,
		Validation: true,
		Statistics: true,
		Timeout:    30 * time.Second,
	}
}

// ProductionConfig is the preset for production deployments.
func ProductionConfig() Config {
	return Config{
		Logging:    true,
		Validation: true,
		Statistics: true,
		RateLimit:  1000,
		RateBurst:  2000,
		Timeout:    10 * time.Second,
	}
}

// MinimalConfig is the preset with every built-in concern disabled; the
// pipeline is pure dispatch glue.
func MinimalConfig() Config {
	return Config{}
}

// Client is the main entry point for mediate-go. It wires the type registry,
// the two interceptor catalogs, the dispatcher, the publisher, the statistics
// tracker and the inspector.
type Client struct {
	registry            *registry.TypeRegistry
	requestCatalog      *interceptors.Catalog
	notificationCatalog *interceptors.Catalog
	sender              *dispatch.Sender
	publisher           *dispatch.Publisher
	tracker             *stats.Tracker
	inspector           *inspect.Inspector
}

// clientConfig holds client construction state
type clientConfig struct {
	logger   *slog.Logger
	resolver registry.Resolver
	config   Config
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

// WithLogger sets the logger for all components
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithResolver sets the instance resolver supplied by the hosting
// collaborator. Without one, type-registered handlers are materialized as
// zero values.
func WithResolver(resolver registry.Resolver) ClientOption {
	return func(cfg *clientConfig) {
		cfg.resolver = resolver
	}
}

// WithConfig selects the built-in pipeline concerns
func WithConfig(config Config) ClientOption {
	return func(cfg *clientConfig) {
		cfg.config = config
	}
}

// NewClient creates a new mediate client. The default configuration is the
// development preset.
func NewClient(options ...ClientOption) *Client {
	cfg := &clientConfig{
		logger:   slog.Default(),
		resolver: registry.ZeroValueResolver{},
		config:   DevelopmentConfig(),
	}

	for _, opt := range options {
		opt(cfg)
	}

	reg := registry.NewTypeRegistry(registry.WithRegistryLogger(cfg.logger))
	requestCatalog := interceptors.NewCatalog()
	notificationCatalog := interceptors.NewCatalog()
	tracker := stats.NewTracker(stats.WithTrackerLogger(cfg.logger))

	registerBuiltins(requestCatalog, notificationCatalog, tracker, cfg)

	sender := dispatch.NewSender(reg, requestCatalog,
		dispatch.WithSenderLogger(cfg.logger),
		dispatch.WithSenderResolver(cfg.resolver),
	)
	publisher := dispatch.NewPublisher(reg, notificationCatalog,
		dispatch.WithPublisherLogger(cfg.logger),
		dispatch.WithPublisherResolver(cfg.resolver),
		dispatch.WithAbortOnListenerFailure(cfg.config.AbortOnListenerFailure),
	)

	return &Client{
		registry:            reg,
		requestCatalog:      requestCatalog,
		notificationCatalog: notificationCatalog,
		sender:              sender,
		publisher:           publisher,
		tracker:             tracker,
		inspector:           inspect.NewInspector(reg, requestCatalog, notificationCatalog),
	}
}

// registerBuiltins wires the configured built-in interceptors into the
// catalogs. Logging always runs outermost and timeout innermost; statistics
// and validation sit in between in that order.
func registerBuiltins(requestCatalog, notificationCatalog *interceptors.Catalog, tracker *stats.Tracker, cfg *clientConfig) {
	both := []*interceptors.Catalog{requestCatalog, notificationCatalog}

	if cfg.config.Logging {
		for _, catalog := range both {
			_ = catalog.Register(interceptors.NewLoggingInterceptor(cfg.logger),
				interceptors.WithOrder(interceptors.OrderFirst))
		}
	}
	if cfg.config.RateLimit > 0 {
		_ = requestCatalog.Register(
			interceptors.NewRateLimitingInterceptor(cfg.config.RateLimit, cfg.config.RateBurst),
			interceptors.WithOrder(-200))
	}
	if cfg.config.Statistics {
		for _, catalog := range both {
			_ = catalog.Register(interceptors.NewStatisticsInterceptor(tracker),
				interceptors.WithOrder(-100))
		}
	}
	if cfg.config.Validation {
		for _, catalog := range both {
			_ = catalog.Register(interceptors.NewValidationInterceptor(nil),
				interceptors.WithOrder(-50))
		}
	}
	if cfg.config.Timeout > 0 {
		_ = requestCatalog.Register(interceptors.NewTimeoutInterceptor(cfg.config.Timeout),
			interceptors.WithOrder(interceptors.OrderLast))
	}
}

// Send dispatches a command or query to its single handler.
func (c *Client) Send(ctx context.Context, req contracts.Message) (interface{}, error) {
	return c.sender.Send(ctx, req)
}

// SendStream dispatches a streaming request.
func (c *Client) SendStream(ctx context.Context, req contracts.Message) (<-chan registry.StreamItem, error) {
	return c.sender.SendStream(ctx, req)
}

// Publish delivers a notification to every listener for its type.
func (c *Client) Publish(ctx context.Context, notification contracts.Message) error {
	return c.publisher.Publish(ctx, notification)
}

// Subscribe adds a runtime listener for the notification type of proto.
func (c *Client) Subscribe(proto contracts.Message, listener registry.NotificationListener) error {
	return c.registry.Subscribe(proto, listener)
}

// Unsubscribe removes a runtime listener previously added by Subscribe.
func (c *Client) Unsubscribe(proto contracts.Message, listener registry.NotificationListener) error {
	return c.registry.Unsubscribe(proto, listener)
}

// Registry returns the type registry for handler and listener registration
func (c *Client) Registry() *registry.TypeRegistry {
	return c.registry
}

// RequestCatalog returns the interceptor catalog for the request pipeline
func (c *Client) RequestCatalog() *interceptors.Catalog {
	return c.requestCatalog
}

// NotificationCatalog returns the interceptor catalog for the publish pipeline
func (c *Client) NotificationCatalog() *interceptors.Catalog {
	return c.notificationCatalog
}

// Sender returns the request dispatcher
func (c *Client) Sender() *dispatch.Sender {
	return c.sender
}

// Publisher returns the notification publisher
func (c *Client) Publisher() *dispatch.Publisher {
	return c.publisher
}

// Tracker returns the statistics tracker
func (c *Client) Tracker() *stats.Tracker {
	return c.tracker
}

// Inspector returns the pipeline inspector
func (c *Client) Inspector() *inspect.Inspector {
	return c.inspector
}
