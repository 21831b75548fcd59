package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"whereiscurtis/internal/clients"
	"whereiscurtis/internal/mailer"
	"whereiscurtis/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Event{},
		&models.APIRequest{},
		&models.BackupAttempt{},
	))

	return db
}

// fakeSpotClient отдает заранее подготовленный обмен и считает вызовы.
type fakeSpotClient struct {
	mu       sync.Mutex
	calls    int
	exchange *clients.FeedExchange
	err      error
	delay    time.Duration
}

func (f *fakeSpotClient) FetchLatest(ctx context.Context) (*clients.FeedExchange, error) {
	f.mu.Lock()
	f.calls++
	exchange := *f.exchange
	err := f.err
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return &exchange, err
}

func (f *fakeSpotClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func feedExchange(events ...models.Event) *clients.FeedExchange {
	return &clients.FeedExchange{
		Messages:    events,
		RawRequest:  []byte(`{"method":"GET","url":"test"}`),
		RawResponse: []byte(`{"ok":true}`),
		StatusCode:  200,
	}
}

// fakeCache — Redis в памяти, уважает TTL через подсунутые часы.
type fakeCache struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]cacheEntry
}

type cacheEntry struct {
	value   []byte
	expires time.Time
}

func newFakeCache(now func() time.Time) *fakeCache {
	return &fakeCache{now: now, data: make(map[string]cacheEntry)}
}

func (c *fakeCache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data[key]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *fakeCache) store(key string, value []byte, expiration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{value: value, expires: c.now().Add(expiration)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if value, ok := c.lookup(key); ok {
		return string(value), nil
	}
	return "", nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case string:
		c.store(key, []byte(v), expiration)
	case []byte:
		c.store(key, v, expiration)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		c.store(key, data, expiration)
	}
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	value, ok := c.lookup(key)
	if !ok {
		return nil
	}
	return json.Unmarshal(value, dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store(key, data, expiration)
	return nil
}

func (c *fakeCache) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]cacheEntry)
	return nil
}

// fakeMailer запоминает отправленные письма.
type fakeMailer struct {
	mu    sync.Mutex
	sends []sentMail
	err   error
}

type sentMail struct {
	to          []string
	subject     string
	attachments []mailer.Attachment
}

func (m *fakeMailer) Send(to []string, subject, text, html string, attachments []mailer.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sends = append(m.sends, sentMail{to: to, subject: subject, attachments: attachments})
	return nil
}

func (m *fakeMailer) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}
