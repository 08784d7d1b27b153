package chat

import (
	"fmt"
	"time"

	"github.com/sncix/pinyin-annotation/config"

	"github.com/sirupsen/logrus"
)

// New returns the transport selected by cfg.Provider.
func New(cfg config.ChatConfig, log *logrus.Entry) (Transport, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Provider {
	case config.ProviderOllama:
		o, err := NewOllama(cfg.BaseURL, timeout, log)
		if err != nil {
			return nil, err
		}
		return o, nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, timeout, log), nil
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.BaseURL, cfg.APIKey, timeout, log), nil
	default:
		return nil, fmt.Errorf("%v: unknown provider %q", config.ModuleChat, cfg.Provider)
	}
}
