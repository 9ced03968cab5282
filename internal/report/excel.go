package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Occupancy"

// OccupancyReport renders a rooms-by-days occupancy grid as an xlsx file.
type OccupancyReport struct {
	exportsPath string
	logger      *zerolog.Logger
}

func NewOccupancyReport(exportsPath string, logger *zerolog.Logger) *OccupancyReport {
	return &OccupancyReport{exportsPath: exportsPath, logger: logger}
}

func (r *OccupancyReport) Generate(rooms []models.Room, byRoom map[int64][]models.Booking, start, end time.Time) (string, error) {
	if err := os.MkdirAll(r.exportsPath, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Occupancy: %s - %s",
		start.Format("02.01.2006"), end.Format("02.01.2006")))

	dateCols := r.writeDateHeaders(f, start, end)
	r.writeRoomHeaders(f, rooms)
	r.writeOccupancy(f, rooms, byRoom, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)

	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("occupancy_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	filePath := filepath.Join(r.exportsPath, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	r.logger.Info().Str("file_path", filePath).Msg("Occupancy report created")
	return filePath, nil
}

func (r *OccupancyReport) writeDateHeaders(f *excelize.File, start, end time.Time) map[string]int {
	col := 2
	current := models.Day(start)
	last := models.Day(end)
	dateCols := make(map[string]int)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for !current.After(last) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, current.Format("02.01"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[current.Format("2006-01-02")] = col

		col++
		current = current.AddDate(0, 0, 1)
	}
	return dateCols
}

func (r *OccupancyReport) writeRoomHeaders(f *excelize.File, rooms []models.Room) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	row := 3
	for _, room := range rooms {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s (%d)", room.Name, room.Number))
		_ = f.SetCellStyle(sheetName, cell, cell, style)
		row++
	}
}

func (r *OccupancyReport) writeOccupancy(f *excelize.File, rooms []models.Room, byRoom map[int64][]models.Booking, dateCols map[string]int) {
	bookedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	row := 3
	for _, room := range rooms {
		for _, b := range byRoom[room.Number] {
			current := models.Day(b.StartDate)
			last := models.Day(b.EndDate)
			for !current.After(last) {
				col, ok := dateCols[current.Format("2006-01-02")]
				current = current.AddDate(0, 0, 1)
				if !ok {
					continue
				}

				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("user %d", b.UserID))
				_ = f.SetCellStyle(sheetName, cell, cell, bookedStyle)
			}
		}
		row++
	}
}
