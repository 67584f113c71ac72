package config

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config: no configuration file found in search paths")
	ErrInvalidCapacity    = errors.New("config: mailbox.mailbox-capacity must be >= 0")
	ErrInvalidPushTimeout = errors.New("config: mailbox.mailbox-push-timeout-time must be >= 0")
	ErrInvalidWorkers     = errors.New("config: dispatcher.workers must be >= 0")
)
