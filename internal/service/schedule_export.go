package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
	"github.com/noah-isme/timetable-admin-api/pkg/export"
)

// ExportGridCSV renders one profile's weekly grid as CSV, periods as rows and
// days as columns.
func (s *ScheduleService) ExportGridCSV(ctx context.Context, entityID string, exporter *export.CSVExporter) ([]byte, error) {
	grid, err := s.Grid(ctx, entityID)
	if err != nil {
		return nil, err
	}
	data, err := exporter.Render(gridDataset(grid))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
	}
	return data, nil
}

// ExportGridPDF renders one profile's weekly grid as a landscape PDF.
func (s *ScheduleService) ExportGridPDF(ctx context.Context, entityID string, exporter *export.PDFExporter) ([]byte, error) {
	grid, err := s.Grid(ctx, entityID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Timetable %s", grid.EntityName)
	data, err := exporter.RenderLandscape(gridDataset(grid), title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	return data, nil
}

func gridDataset(grid *models.TimetableGrid) export.Dataset {
	dataset := export.Dataset{Headers: append([]string{"Period"}, grid.Days...)}
	for _, slot := range grid.Slots {
		row := map[string]string{"Period": fmt.Sprintf("%d (%s)", slot.Period, slot.TimeRange)}
		for _, day := range grid.Days {
			entry, ok := grid.Cells[day][slot.Period]
			if !ok {
				continue
			}
			text := entry.Subject
			if entry.DisplayName != "" {
				text += " / " + entry.DisplayName
			}
			if entry.Room != "" {
				text += " @" + entry.Room
			}
			row[day] = text
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset
}
