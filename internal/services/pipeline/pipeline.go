// Package pipeline wires lookup, chat transport, engine and annotator from a
// loaded configuration.
package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sncix/pinyin-annotation/config"
	"github.com/sncix/pinyin-annotation/internal/core/annotate"
	"github.com/sncix/pinyin-annotation/internal/core/chat"
	"github.com/sncix/pinyin-annotation/internal/core/disambiguate"
	"github.com/sncix/pinyin-annotation/internal/core/lookup"
	"github.com/sncix/pinyin-annotation/pkg/logger"
)

// Build returns an Annotator backed by the configured chat provider and
// cfg.Engine.Model. Providers that cannot constrain replies to a schema are
// refused before any model call.
func Build(cfg config.Config, log *logrus.Logger) (*annotate.Annotator, error) {
	if cfg.Engine.Model == "" {
		return nil, fmt.Errorf("%v: model name is required", config.ModuleEngine)
	}
	transport, err := chat.New(cfg.Chat, logger.Named(log, string(config.ModuleChat)))
	if err != nil {
		return nil, err
	}
	if !chat.SupportsSchema(transport) {
		return nil, fmt.Errorf("%v: provider %q: %w", config.ModuleChat, cfg.Chat.Provider, chat.ErrSchemaUnsupported)
	}
	engine := disambiguate.NewEngine(transport, disambiguate.Config{
		Model:              cfg.Engine.Model,
		Seed:               cfg.Engine.Seed,
		ContextWindow:      cfg.Engine.ContextWindow,
		MaxReasoningTokens: cfg.Engine.MaxReasoningTokens,
	}, logger.Named(log, string(config.ModuleEngine)))
	logger.Named(log, string(config.ModuleEngine)).WithFields(logrus.Fields{
		"provider": cfg.Chat.Provider,
		"model":    engine.Model(),
		"seed":     cfg.Engine.Seed,
	}).Info("engine ready")

	return annotate.New(lookup.NewPinyin(), engine, logger.Named(log, string(config.ModuleAnnotate))), nil
}
