package backend

import (
	"fmt"

	"pennywise/internal/amqp"
	"pennywise/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,
		DSN:  appConfig.DSN(),

		AMQPURL:               appConfig.AMQPURL,
		AMQPExchange:          appConfig.AMQPExchange,
		AMQPQueue:             appConfig.AMQPQueue,
		AMQPNotificationQueue: appConfig.AMQPNotificationQueue,

		GeminiAPIKey:      appConfig.GeminiAPIKey,
		GeminiModel:       appConfig.GeminiModel,
		LLMTimeout:        appConfig.LLMTimeout,
		CategoryCacheSize: appConfig.CategoryCacheSize,
		CategoryCacheTTL:  appConfig.CategoryCacheTTL,

		BcryptCost: appConfig.BcryptCost,
	}, nil
}

// AMQPConfig returns the broker settings shared by the API and the worker.
func (c Config) AMQPConfig() amqp.Config {
	return amqp.Config{
		URL:               c.AMQPURL,
		Exchange:          c.AMQPExchange,
		LedgerQueue:       c.AMQPQueue,
		NotificationQueue: c.AMQPNotificationQueue,
	}
}
