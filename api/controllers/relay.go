package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/authdash-backend/api/responses"
	"github.com/angelmondragon/authdash-backend/api/validators"
	"github.com/angelmondragon/authdash-backend/internal/relay"
	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
	"github.com/angelmondragon/authdash-backend/pkg/logger"
)

type eventBroadcaster interface {
	Subscribe(w http.ResponseWriter) (*relay.Subscriber, error)
	Unsubscribe(sub *relay.Subscriber)
	Publish(ctx context.Context, payload any) relay.PublishResult
}

// Webhook accepts any JSON body and fans it out to every open stream.
func Webhook(b eventBroadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := validators.ReadRawJSON(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := b.Publish(r.Context(), payload)
		logg.Info(logg.WithFields(r.Context(), map[string]any{
			"delivered": result.Delivered,
			"failed":    result.Failed,
		}), "webhook received")

		responses.WriteText(w, http.StatusOK, "Webhook received")
	}
}

// SSE holds the connection open until the client goes away.
func SSE(b eventBroadcaster, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := b.Subscribe(w)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "streaming unsupported"))
			return
		}
		ctx := logg.WithSubscriberID(r.Context(), sub.ID())
		logg.Info(ctx, "sse subscriber connected")

		<-r.Context().Done()

		b.Unsubscribe(sub)
		logg.Info(ctx, "sse subscriber disconnected")
	}
}
