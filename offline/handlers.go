package offline

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handlers binds one handler to each event kind.
type Handlers struct {
	Install  Handler
	Activate Handler
	Fetch    Handler
	Message  Handler
}

// NewHandlers wires the default handlers.
func NewHandlers(cfg Config, storage *CacheStorage, strategy Strategy, logger *zap.Logger) Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Handlers{
		Install:  &InstallHandler{config: cfg, storage: storage, logger: logger},
		Activate: &ActivateHandler{config: cfg, storage: storage, logger: logger},
		Fetch:    &FetchHandler{strategy: strategy},
		Message:  &MessageHandler{},
	}
}

// InstallHandler caches the application shell and asks to activate without waiting.
type InstallHandler struct {
	config  Config
	storage *CacheStorage
	logger  *zap.Logger
}

func (h *InstallHandler) Handle(ctx context.Context, event Event) {
	ev, ok := event.(*InstallEvent)
	if !ok {
		return
	}
	h.logger.Info("Install event")

	ev.WaitUntil(func(ctx context.Context) error {
		cache, err := h.storage.Open(ctx, h.config.CacheName)
		if err != nil {
			h.logger.Error("Failed to cache app shell", zap.Error(err))
			return nil
		}
		h.logger.Info("Caching app shell assets")

		if err := cache.AddAll(ctx, h.config.AssetsToCacheOnInstall); err != nil {
			h.logger.Error("Failed to cache app shell", zap.Error(err))
			return nil
		}
		h.logger.Info("App shell cached successfully")

		if err := ev.Scope().SkipWaiting(ctx); err != nil {
			h.logger.Error("Failed to cache app shell", zap.Error(err))
		}
		return nil
	})
}

// ActivateHandler deletes stale caches of the same family and claims clients.
type ActivateHandler struct {
	config  Config
	storage *CacheStorage
	logger  *zap.Logger
}

func (h *ActivateHandler) Handle(ctx context.Context, event Event) {
	ev, ok := event.(*ActivateEvent)
	if !ok {
		return
	}
	h.logger.Info("Activate event")

	ev.WaitUntil(func(ctx context.Context) error {
		names, err := h.storage.Keys(ctx)
		if err != nil {
			h.logger.Error("Failed during activation", zap.Error(err))
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, name := range names {
			if name == h.config.CacheName || !strings.HasPrefix(name, h.config.CachePrefix) {
				continue
			}
			h.logger.Info("Deleting old cache", zap.String("cache", name))
			g.Go(func() error {
				_, err := h.storage.Delete(gctx, name)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			h.logger.Error("Failed during activation", zap.Error(err))
			return nil
		}

		h.logger.Info("Activated successfully")
		if err := ev.Scope().ClaimClients(ctx); err != nil {
			h.logger.Error("Failed during activation", zap.Error(err))
		}
		return nil
	})
}

// FetchHandler answers GET requests through the strategy and lets everything else pass.
type FetchHandler struct {
	strategy Strategy
}

func (h *FetchHandler) Handle(ctx context.Context, event Event) {
	ev, ok := event.(*FetchEvent)
	if !ok || ev.Request.Method != http.MethodGet {
		return
	}
	req := ev.Request
	ev.RespondWith(func(ctx context.Context) (*Response, error) {
		return h.strategy.Execute(ctx, req)
	})
}

// Message is the typed form of a worker message.
type Message struct {
	Type string `json:"type"`
}

// MessageSkipWaiting asks a waiting worker to activate.
const MessageSkipWaiting = "SKIP_WAITING"

// MessageHandler reacts to SKIP_WAITING and ignores every other message.
type MessageHandler struct{}

func (h *MessageHandler) Handle(ctx context.Context, event Event) {
	ev, ok := event.(*MessageEvent)
	if !ok || messageType(ev.Data) != MessageSkipWaiting {
		return
	}
	ev.WaitUntil(func(ctx context.Context) error {
		return ev.Scope().SkipWaiting(ctx)
	})
}

func messageType(data any) string {
	switch m := data.(type) {
	case Message:
		return m.Type
	case *Message:
		if m != nil {
			return m.Type
		}
	case map[string]any:
		if s, ok := m["type"].(string); ok {
			return s
		}
	case map[string]string:
		return m["type"]
	}
	return ""
}
