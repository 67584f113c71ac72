// Package config provides configuration loading for mailbox factory
// settings: a flat settings struct with yaml/json tags, a DefaultConfig
// constructor, a search-path Loader, and a hot-reload Watcher.
package config

import "time"

// Variant names one of the mailbox's published queue flavors, mirrored
// here as a string so it round-trips through YAML without the root
// bollywood package's QueueVariant constants leaking into this package.
type Variant string

const (
	VariantUnboundedFIFO   Variant = "unbounded-fifo"
	VariantBoundedFIFO     Variant = "bounded-fifo"
	VariantUnboundedDeque  Variant = "unbounded-deque"
	VariantBoundedDeque    Variant = "bounded-deque"
	VariantPriority        Variant = "priority"
	VariantBoundedPriority Variant = "bounded-priority"
	VariantUnboundedMPSC   Variant = "unbounded-mpsc"
)

// MailboxConfig holds the factory-construction parameters named by the
// mailbox subsystem's configuration keys.
type MailboxConfig struct {
	// Variant selects the queue flavor.
	Variant Variant `yaml:"variant" json:"variant"`
	// Capacity is "mailbox-capacity": bounded-queue capacity, >= 0.
	Capacity int `yaml:"mailbox-capacity" json:"mailbox-capacity"`
	// PushTimeout is "mailbox-push-timeout-time": the bounded-offer
	// timeout. 0 means unbounded-blocking put.
	PushTimeout time.Duration `yaml:"mailbox-push-timeout-time" json:"mailbox-push-timeout-time"`
}

// DispatcherConfig holds the worker-pool sizing and throughput budget
// consumed by the dispatcher.
type DispatcherConfig struct {
	Workers            int           `yaml:"workers" json:"workers"`
	Throughput         int           `yaml:"throughput" json:"throughput"`
	ThroughputDeadline time.Duration `yaml:"throughput-deadline" json:"throughput-deadline"`
	RunQueueSize       int           `yaml:"run-queue-size" json:"run-queue-size"`
}

// Config is the complete actor-system configuration this module loads.
type Config struct {
	Mailbox    MailboxConfig    `yaml:"mailbox" json:"mailbox"`
	Dispatcher DispatcherConfig `yaml:"dispatcher" json:"dispatcher"`
}

// DefaultConfig returns a Config with the defaults the engine falls back
// to when no configuration file is found.
func DefaultConfig() *Config {
	return &Config{
		Mailbox: MailboxConfig{
			Variant:     VariantUnboundedFIFO,
			Capacity:    0,
			PushTimeout: 0,
		},
		Dispatcher: DispatcherConfig{
			Workers:            1,
			Throughput:         30,
			ThroughputDeadline: 0,
			RunQueueSize:       0,
		},
	}
}

// Validate rejects the factory-misconfiguration cases the mailbox factory
// requires to fail eagerly at construction: negative capacity, negative
// timeout.
func (c *Config) Validate() error {
	if c.Mailbox.Capacity < 0 {
		return ErrInvalidCapacity
	}
	if c.Mailbox.PushTimeout < 0 {
		return ErrInvalidPushTimeout
	}
	if c.Dispatcher.Workers < 0 {
		return ErrInvalidWorkers
	}
	return nil
}
