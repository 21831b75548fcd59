package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"whereiscurtis/internal/clients"
	"whereiscurtis/internal/models"
	"whereiscurtis/internal/repository"
)

const (
	fetchMarkerKey   = "spot:last_fetch"
	messageBundleKey = "spot:messages"
)

type FeedService interface {
	GetMessages(ctx context.Context) (*MessageBundle, error)
	ReplayLast(ctx context.Context) ([]models.Event, error)
	ImportMessages(ctx context.Context, events []models.Event) error
}

// MessageBundle — ответ координатора: события плюс метаданные
// последнего обращения к апстриму.
type MessageBundle struct {
	Messages              []models.Event `json:"messages"`
	LastAPIRequestTime    *time.Time     `json:"lastApiRequestTime"`
	LastAPIResponseStatus *int           `json:"lastApiResponseStatus"`
	FromCache             bool           `json:"fromCache"`
}

type FeedConfig struct {
	FreshnessWindow time.Duration
}

type feedService struct {
	events      repository.EventRepository
	apiRequests repository.APIRequestRepository
	cacheRepo   repository.CacheRepository
	client      clients.SpotClient
	window      time.Duration

	// Сериализует переход STALE→fetch, чтобы два конкурентных вызова
	// не сходили к апстриму оба
	mu  sync.Mutex
	now func() time.Time
}

func NewFeedService(
	events repository.EventRepository,
	apiRequests repository.APIRequestRepository,
	cacheRepo repository.CacheRepository,
	client clients.SpotClient,
	config FeedConfig,
) FeedService {
	return &feedService{
		events:      events,
		apiRequests: apiRequests,
		cacheRepo:   cacheRepo,
		client:      client,
		window:      config.FreshnessWindow,
		now:         time.Now,
	}
}

// GetMessages решает, идти ли к апстриму: если последнее обращение старше
// окна свежести (или его не было) — фетчим, иначе отдаем кэш.
func (s *feedService) GetMessages(ctx context.Context) (*MessageBundle, error) {
	fresh, err := s.isFresh(ctx)
	if err != nil {
		return nil, err
	}

	if fresh {
		// Сначала пробуем собранный ответ из Redis
		var cached MessageBundle
		if err := s.cacheRepo.GetJSON(ctx, messageBundleKey, &cached); err == nil && len(cached.Messages) > 0 {
			cached.FromCache = true
			return &cached, nil
		}
		return s.buildBundle(ctx, true)
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s.buildBundle(ctx, false)
}

func (s *feedService) isFresh(ctx context.Context) (bool, error) {
	// Маркер в Redis живет ровно окно свежести, попадание избавляет
	// от похода в БД
	if marker, err := s.cacheRepo.Get(ctx, fetchMarkerKey); err == nil && marker != "" {
		return true, nil
	}

	lastTime, _, err := s.apiRequests.LastInfo(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get last api request info: %w", err)
	}
	return lastTime != nil && s.now().Sub(*lastTime) < s.window, nil
}

// refresh выполняет fetch-and-record под мьютексом. Свежесть перепроверяется
// после захвата: второй из гонящихся вызовов увидит FRESH и не пойдет
// к апстриму.
func (s *feedService) refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastTime, _, err := s.apiRequests.LastInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last api request info: %w", err)
	}
	if lastTime != nil && s.now().Sub(*lastTime) < s.window {
		return nil // Кто-то успел раньше
	}

	log.Println("Fetching Spot feed from external API...")

	exchange, fetchErr := s.client.FetchLatest(ctx)

	// Обмен записывается всегда, и при неудаче тоже: сырой ответ нужен
	// для реплея и дебага
	if err := s.apiRequests.Record(ctx, exchange.RawRequest, exchange.RawResponse, exchange.StatusCode); err != nil {
		return fmt.Errorf("failed to record api call: %w", err)
	}

	if err := s.cacheRepo.Set(ctx, fetchMarkerKey, "1", s.window); err != nil {
		log.Printf("Failed to set fetch marker: %v", err)
	}

	if fetchErr != nil {
		// Ошибку не маскируем: вызов записан, наверх уходит она сама
		return fetchErr
	}

	if err := s.events.UpsertBatch(ctx, exchange.Messages); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}

	log.Printf("Spot feed fetched: %d messages", len(exchange.Messages))
	return nil
}

func (s *feedService) buildBundle(ctx context.Context, fromCache bool) (*MessageBundle, error) {
	messages, err := s.events.Query(ctx, nil, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	// Метаданные перечитываются после любой записи, чтобы ответ
	// всегда отражал актуальное состояние
	lastTime, lastStatus, err := s.apiRequests.LastInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last api request info: %w", err)
	}

	bundle := &MessageBundle{
		Messages:              messages,
		LastAPIRequestTime:    lastTime,
		LastAPIResponseStatus: lastStatus,
		FromCache:             fromCache,
	}

	if err := s.cacheRepo.SetJSON(ctx, messageBundleKey, bundle, s.window); err != nil {
		log.Printf("Failed to cache message bundle: %v", err)
	}

	return bundle, nil
}

// ReplayLast перепарсивает последний сохраненный сырой ответ и заново
// загружает события в базу.
func (s *feedService) ReplayLast(ctx context.Context) ([]models.Event, error) {
	last, err := s.apiRequests.Last(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last api request: %w", err)
	}
	if last == nil {
		return nil, fmt.Errorf("no previous API request found")
	}

	messages, err := clients.ParseFeedResponse(last.ResponseJSON)
	if err != nil {
		return nil, err
	}

	if err := s.events.UpsertBatch(ctx, messages); err != nil {
		return nil, fmt.Errorf("failed to store events: %w", err)
	}

	s.invalidateBundle(ctx)
	return messages, nil
}

// ImportMessages валидирует и сохраняет события, загруженные вручную.
func (s *feedService) ImportMessages(ctx context.Context, events []models.Event) error {
	for i, event := range events {
		if event.ID == "" || event.MessageType == "" || event.UnixTime == 0 {
			return fmt.Errorf("invalid message %d: missing required fields", i)
		}
	}

	if err := s.events.UpsertBatch(ctx, events); err != nil {
		return fmt.Errorf("failed to store events: %w", err)
	}

	s.invalidateBundle(ctx)
	return nil
}

func (s *feedService) invalidateBundle(ctx context.Context) {
	if err := s.cacheRepo.Delete(ctx, messageBundleKey); err != nil {
		log.Printf("Failed to invalidate message bundle cache: %v", err)
	}
}
