package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"whereiscurtis/internal/models"
	"whereiscurtis/internal/repository"
	"whereiscurtis/internal/utils"
)

type ExportService interface {
	ExportEvents(ctx context.Context, format string, startTime, endTime *int64) (*ExportFile, error)
}

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

type exportService struct {
	events repository.EventRepository
}

func NewExportService(events repository.EventRepository) ExportService {
	return &exportService{events: events}
}

// ExportEvents выгружает историю событий в json, csv или xlsx.
func (s *exportService) ExportEvents(ctx context.Context, format string, startTime, endTime *int64) (*ExportFile, error) {
	events, err := s.events.Query(ctx, startTime, endTime, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	date := time.Now().UTC().Format("2006-01-02")
	prefix := fmt.Sprintf("whereiscurtis_backup_%s", date)

	switch format {
	case "", "json":
		content, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal events: %w", err)
		}
		return &ExportFile{
			Filename:    prefix + ".json",
			ContentType: "application/json",
			Content:     content,
		}, nil

	case "csv":
		content, err := eventsToCSV(events)
		if err != nil {
			return nil, fmt.Errorf("failed to build CSV: %w", err)
		}
		return &ExportFile{
			Filename:    prefix + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil

	case "excel", "xlsx":
		f, err := utils.BuildEventsWorkbook(events)
		if err != nil {
			return nil, fmt.Errorf("failed to build Excel file: %w", err)
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, fmt.Errorf("failed to write Excel file: %w", err)
		}
		return &ExportFile{
			Filename:    prefix + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     buf.Bytes(),
		}, nil

	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func eventsToCSV(events []models.Event) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "message_type", "message_content", "unix_time", "latitude", "longitude"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, event := range events {
		row := []string{
			event.ID,
			string(event.MessageType),
			event.MessageContent,
			strconv.FormatInt(event.UnixTime, 10),
			strconv.FormatFloat(event.Latitude, 'f', 6, 64),
			strconv.FormatFloat(event.Longitude, 'f', 6, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
