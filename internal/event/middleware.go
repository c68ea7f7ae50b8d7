package event

import (
	"time"

	"movie-booking/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

func useMiddlewares(router *message.Router, logger watermill.LoggerAdapter) {
	router.AddMiddleware(middleware.Recoverer)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          logger,
	}.Middleware)

	router.AddMiddleware(correlationMiddleware)
	router.AddMiddleware(loggingMiddleware(logger))
}

func correlationMiddleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = utils.GenerateCorrelationID()
		}

		msg.SetContext(utils.SetCorrelationID(msg.Context(), correlationID))

		return h(msg)
	}
}

func loggingMiddleware(logger watermill.LoggerAdapter) message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			fields := watermill.LogFields{
				"message_uuid":   msg.UUID,
				"correlation_id": utils.GetCorrelationID(msg.Context()),
				"kind":           msg.Metadata.Get("kind"),
			}

			msgs, err := next(msg)
			if err != nil {
				logger.Error("Message handling error", err, fields)
				return msgs, err
			}

			logger.Debug("Handled message", fields)
			return msgs, nil
		}
	}
}
