package worker

import (
	"context"
	"log"
	"time"

	"whereiscurtis/internal/service"
)

// BackupWorker тикает чаще, чем длится окно бэкапа: сервис сам решит,
// пора ли отправлять, и пропустит лишние тики.
type BackupWorker struct {
	service  service.BackupService
	interval time.Duration
	stopChan chan struct{}
	running  bool
}

func NewBackupWorker(service service.BackupService, interval time.Duration) *BackupWorker {
	return &BackupWorker{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *BackupWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("Backup Worker started with interval %v", w.interval)

	w.runBackup()

	go w.run()
}

func (w *BackupWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("Backup Worker stopped")
}

func (w *BackupWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runBackup()
		case <-w.stopChan:
			return
		}
	}
}

func (w *BackupWorker) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	outcome, err := w.service.RunBackupIfDue(ctx, time.Now())
	if err != nil {
		log.Printf("Backup Worker error: %v", err)
		return
	}

	if outcome.Ran {
		log.Printf("Backup Worker: backup sent (%d messages)", len(outcome.Messages))
	}
}
