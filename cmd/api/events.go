package main

import (
	"context"
	"strings"

	"github.com/angelmondragon/authdash-backend/internal/relay"
	"github.com/angelmondragon/authdash-backend/internal/webhooks"
	"github.com/angelmondragon/authdash-backend/pkg/config"
	"github.com/angelmondragon/authdash-backend/pkg/db"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
	"github.com/angelmondragon/authdash-backend/pkg/pubsub"
)

// buildEmitter assembles the event fan-out for the configured relay mode.
// The returned close func releases any Pub/Sub client it opened.
func buildEmitter(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client, broadcaster *relay.Broadcaster) (webhooks.Emitter, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Events.Enabled {
		logg.Warn(ctx, "event emission disabled")
		return webhooks.NopEmitter{}, noop, nil
	}

	var sinks []webhooks.Sink
	switch cfg.Relay.Mode {
	case config.RelayModeEmbedded:
		sinks = append(sinks, webhooks.NewRelaySink(broadcaster))
	case config.RelayModeRemote:
		sinks = append(sinks, webhooks.NewHTTPSink(cfg.Relay.URL, cfg.Relay.Timeout))
	}

	closeFn := noop
	if strings.TrimSpace(cfg.Events.PubSubTopic) != "" {
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.Events, logg)
		if err != nil {
			return nil, noop, err
		}
		sinks = append(sinks, webhooks.NewPubSubSink(client.EventsPublisher()))
		closeFn = client.Close
	}

	for _, sink := range sinks {
		logg.Info(logg.WithField(ctx, "sink", sink.Name()), "event sink enabled")
	}
	return webhooks.NewDispatcher(webhooks.NewRepository(dbClient.DB()), logg, sinks...), closeFn, nil
}
