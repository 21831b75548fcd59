package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"whereiscurtis/internal/models"
	"whereiscurtis/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExportFixture(t *testing.T) (ExportService, repository.EventRepository) {
	db := newTestDB(t)
	events := repository.NewEventRepository(db)
	return NewExportService(events), events
}

func TestExportEventsJSON(t *testing.T) {
	svc, events := newExportFixture(t)
	ctx := context.Background()

	require.NoError(t, events.UpsertBatch(ctx, []models.Event{
		trackEvent("A", 100),
		trackEvent("B", 200),
	}))

	file, err := svc.ExportEvents(ctx, "json", nil, nil)
	require.NoError(t, err)

	assert.Contains(t, file.Filename, "whereiscurtis_backup_")
	assert.True(t, strings.HasSuffix(file.Filename, ".json"))
	assert.Equal(t, "application/json", file.ContentType)

	var decoded []models.Event
	require.NoError(t, json.Unmarshal(file.Content, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "B", decoded[0].ID)
	assert.Equal(t, "A", decoded[1].ID)
}

func TestExportEventsCSV(t *testing.T) {
	svc, events := newExportFixture(t)
	ctx := context.Background()

	require.NoError(t, events.UpsertBatch(ctx, []models.Event{trackEvent("A", 100)}))

	file, err := svc.ExportEvents(ctx, "csv", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,message_type,message_content,unix_time,latitude,longitude", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "A,"))
}

func TestExportEventsXLSX(t *testing.T) {
	svc, events := newExportFixture(t)
	ctx := context.Background()

	require.NoError(t, events.UpsertBatch(ctx, []models.Event{trackEvent("A", 100)}))

	file, err := svc.ExportEvents(ctx, "xlsx", nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))
	assert.NotEmpty(t, file.Content)
}

func TestExportEventsTimeRange(t *testing.T) {
	svc, events := newExportFixture(t)
	ctx := context.Background()

	require.NoError(t, events.UpsertBatch(ctx, []models.Event{
		trackEvent("A", 100),
		trackEvent("B", 200),
		trackEvent("C", 300),
	}))

	from := int64(150)
	to := int64(250)
	file, err := svc.ExportEvents(ctx, "json", &from, &to)
	require.NoError(t, err)

	var decoded []models.Event
	require.NoError(t, json.Unmarshal(file.Content, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "B", decoded[0].ID)
}

func TestExportEventsUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, err := svc.ExportEvents(context.Background(), "pdf", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
