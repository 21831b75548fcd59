package utils

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"whereiscurtis/internal/models"
)

const eventsSheet = "Messages"

// BuildEventsWorkbook собирает Excel-книгу с историей сообщений трекера.
func BuildEventsWorkbook(events []models.Event) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(eventsSheet)
	if err != nil {
		f.Close()
		return nil, err
	}

	headers := []string{"ID", "Type", "Content", "Time (UTC)", "Latitude", "Longitude"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(eventsSheet, cell, header)
	}

	for rowIdx, event := range events {
		rowNum := rowIdx + 2 // Заголовок в первой строке

		f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", rowNum), event.ID)
		f.SetCellValue(eventsSheet, fmt.Sprintf("B%d", rowNum), string(event.MessageType))
		f.SetCellValue(eventsSheet, fmt.Sprintf("C%d", rowNum), event.MessageContent)
		f.SetCellValue(eventsSheet, fmt.Sprintf("D%d", rowNum),
			time.Unix(event.UnixTime, 0).UTC().Format("2006-01-02 15:04:05"))
		f.SetCellValue(eventsSheet, fmt.Sprintf("E%d", rowNum), event.Latitude)
		f.SetCellValue(eventsSheet, fmt.Sprintf("F%d", rowNum), event.Longitude)
	}

	// Авто-ширина колонок
	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(eventsSheet, colName, colName, 22)
	}

	createInfoSheet(f, events)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f, nil
}

func createInfoSheet(f *excelize.File, events []models.Event) {
	f.NewSheet("Info")

	rows := [][2]interface{}{
		{"Report Generated", time.Now().UTC().Format("2006-01-02 15:04:05")},
		{"Total Messages", len(events)},
	}

	if len(events) > 0 {
		// События отсортированы по unix_time по убыванию
		newest := time.Unix(events[0].UnixTime, 0).UTC()
		oldest := time.Unix(events[len(events)-1].UnixTime, 0).UTC()
		rows = append(rows, [2]interface{}{
			"Time Range",
			fmt.Sprintf("%s to %s",
				oldest.Format("2006-01-02 15:04:05"),
				newest.Format("2006-01-02 15:04:05")),
		})
	}

	for i, row := range rows {
		f.SetCellValue("Info", fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue("Info", fmt.Sprintf("B%d", i+1), row[1])
	}
}
