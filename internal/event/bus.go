package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"movie-booking/pkg/metrics"
	"movie-booking/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const TopicBookingsChanged = "bookings.changed"

const originKey = "origin"

type Kind string

const (
	KindCreated       Kind = "created"
	KindCancelled     Kind = "cancelled"
	KindStatusChanged Kind = "status_changed"
)

// BookingsChanged sinyal bahwa daftar booking seorang user berubah.
// Payload sengaja kecil, listener membaca ulang data dari repository.
type BookingsChanged struct {
	BookingID  uuid.UUID `json:"booking_id"`
	UserID     uuid.UUID `json:"user_id"`
	Kind       Kind      `json:"kind"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Handler func(ctx context.Context, ev BookingsChanged) error

type Options struct {
	// Redis nil berarti broadcast hanya di dalam proses ini
	Redis      redis.UniversalClient
	InstanceID string
}

type Bus struct {
	local      *gochannel.GoChannel
	remotePub  message.Publisher
	redis      redis.UniversalClient
	router     *message.Router
	instanceID string
	wmLogger   watermill.LoggerAdapter
	log        *zap.Logger

	mu          sync.Mutex
	subscribers []message.Subscriber
}

func NewBus(opts Options, log *zap.Logger) (*Bus, error) {
	wmLogger := NewLoggerAdapter(log)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}
	useMiddlewares(router, wmLogger)

	instanceID := opts.InstanceID
	if instanceID == "" {
		instanceID = watermill.NewShortUUID()
	}

	b := &Bus{
		local: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, wmLogger),
		redis:      opts.Redis,
		router:     router,
		instanceID: instanceID,
		wmLogger:   wmLogger,
		log:        log.With(zap.String("component", "event_bus"), zap.String("instance_id", instanceID)),
	}

	if opts.Redis != nil {
		pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: opts.Redis,
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}
		b.remotePub = pub

		// tanpa consumer group: setiap instance menerima semua event lalu meneruskannya ke listener lokal
		fanout, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client: opts.Redis,
		}, wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}
		b.track(fanout)

		router.AddNoPublisherHandler("bookings_fanout", TopicBookingsChanged, fanout, b.forwardRemote)
	}

	return b, nil
}

// Distributed true kalau event juga dikirim lintas proses
func (b *Bus) Distributed() bool {
	return b.remotePub != nil
}

func (b *Bus) Publish(ctx context.Context, ev BookingsChanged) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Kind, err)
	}

	correlationID := utils.GetCorrelationID(ctx)
	if correlationID == "" {
		correlationID = utils.GenerateCorrelationID()
	}

	newMsg := func() *message.Message {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		middleware.SetCorrelationID(correlationID, msg)
		msg.Metadata.Set(originKey, b.instanceID)
		msg.Metadata.Set("kind", string(ev.Kind))
		return msg
	}

	err = b.local.Publish(TopicBookingsChanged, newMsg())
	if err == nil && b.remotePub != nil {
		err = b.remotePub.Publish(TopicBookingsChanged, newMsg())
	}
	metrics.EventPublished(string(ev.Kind), err)
	if err != nil {
		b.log.Error("Failed to publish bookings changed event",
			zap.Error(err),
			zap.String("booking_id", ev.BookingID.String()),
			zap.String("kind", string(ev.Kind)),
		)
		return fmt.Errorf("publish %s event: %w", ev.Kind, err)
	}

	return nil
}

// Subscribe stream event untuk satu listener, ditutup saat ctx selesai
func (b *Bus) Subscribe(ctx context.Context) (<-chan BookingsChanged, error) {
	messages, err := b.local.Subscribe(ctx, TopicBookingsChanged)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicBookingsChanged, err)
	}

	out := make(chan BookingsChanged, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			ev, err := decode(msg)
			if err != nil {
				b.log.Warn("Dropping malformed event", zap.Error(err), zap.String("message_uuid", msg.UUID))
				msg.Ack()
				continue
			}

			select {
			case out <- ev:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()

	return out, nil
}

// AddHandler daftar handler router. Dengan Redis, handler memakai consumer group bernama name
// sehingga tiap event diproses satu instance saja.
func (b *Bus) AddHandler(name string, h Handler) error {
	var sub message.Subscriber = b.local
	if b.redis != nil {
		s, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        b.redis,
			ConsumerGroup: name,
			Consumer:      b.instanceID,
		}, b.wmLogger)
		if err != nil {
			return fmt.Errorf("create subscriber for %s: %w", name, err)
		}
		b.track(s)
		sub = s
	}

	b.router.AddNoPublisherHandler(name, TopicBookingsChanged, sub, func(msg *message.Message) error {
		ev, err := decode(msg)
		if err != nil {
			b.log.Warn("Skipping malformed event", zap.String("handler", name), zap.Error(err))
			return nil
		}
		return h(msg.Context(), ev)
	})

	return nil
}

func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		b.log.Warn("Event router close", zap.Error(err))
	}

	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = nil
	b.mu.Unlock()

	for _, s := range subs {
		if err := s.Close(); err != nil {
			b.log.Warn("Subscriber close", zap.Error(err))
		}
	}

	if b.remotePub != nil {
		if err := b.remotePub.Close(); err != nil {
			b.log.Warn("Publisher close", zap.Error(err))
		}
	}

	return b.local.Close()
}

func (b *Bus) track(s message.Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, s)
}

// forwardRemote event dari instance lain diteruskan ke gochannel lokal
func (b *Bus) forwardRemote(msg *message.Message) error {
	if msg.Metadata.Get(originKey) == b.instanceID {
		return nil
	}

	local := message.NewMessage(msg.UUID, msg.Payload)
	for k, v := range msg.Metadata {
		local.Metadata.Set(k, v)
	}
	return b.local.Publish(TopicBookingsChanged, local)
}

func decode(msg *message.Message) (BookingsChanged, error) {
	var ev BookingsChanged
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal bookings changed: %w", err)
	}
	return ev, nil
}
