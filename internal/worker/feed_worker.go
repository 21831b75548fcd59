package worker

import (
	"context"
	"log"
	"time"

	"whereiscurtis/internal/service"
)

// FeedWorker периодически дергает координатор, чтобы база не остывала
// между запросами клиентов. Окно свежести внутри сервиса всё равно
// не даст ходить к апстриму чаще положенного.
type FeedWorker struct {
	service  service.FeedService
	interval time.Duration
	stopChan chan struct{}
	running  bool
}

func NewFeedWorker(service service.FeedService, interval time.Duration) *FeedWorker {
	return &FeedWorker{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *FeedWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Feed Worker started with interval %v", w.interval)

	// Первый запуск сразу
	w.fetchFeed()

	go w.run()
}

func (w *FeedWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Feed Worker stopped")
}

func (w *FeedWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.fetchFeed()
		case <-w.stopChan:
			return
		}
	}
}

func (w *FeedWorker) fetchFeed() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if _, err := w.service.GetMessages(ctx); err != nil {
		log.Printf("Feed Worker error: %v", err)
	}
}
