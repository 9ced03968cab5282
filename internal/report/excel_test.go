package report

import (
	"testing"
	"time"

	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateOccupancyReport(t *testing.T) {
	logger := zerolog.Nop()
	gen := NewOccupancyReport(t.TempDir(), &logger)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)

	rooms := []models.Room{
		{Number: 1, Name: "Garden"},
		{Number: 2, Name: "Sea view"},
	}
	byRoom := map[int64][]models.Booking{
		1: {{
			ID:         5,
			UserID:     42,
			RoomNumber: 1,
			StartDate:  start.AddDate(0, 0, 1),
			EndDate:    start.AddDate(0, 0, 2),
		}},
	}

	path, err := gen.Generate(rooms, byRoom, start, end)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "10.03.2026")

	// Date headers start in column B on row 2.
	header, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "10.03", header)

	// Room 1 occupies row 3; its booking covers 11.03 and 12.03 (columns C, D).
	cell, err := f.GetCellValue(sheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, "user 42", cell)

	empty, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.Empty(t, empty)

	// Room 2 has no bookings at all.
	empty, err = f.GetCellValue(sheetName, "C4")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGenerateSkipsOutOfRangeDays(t *testing.T) {
	logger := zerolog.Nop()
	gen := NewOccupancyReport(t.TempDir(), &logger)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	rooms := []models.Room{{Number: 1, Name: "Garden"}}
	byRoom := map[int64][]models.Booking{
		1: {{
			ID:         1,
			UserID:     7,
			RoomNumber: 1,
			StartDate:  start.AddDate(0, 0, -3),
			EndDate:    start.AddDate(0, 0, 10),
		}},
	}

	path, err := gen.Generate(rooms, byRoom, start, end)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	// Both in-range days are marked, nothing panics on the out-of-range rest.
	for _, cellRef := range []string{"B3", "C3"} {
		val, err := f.GetCellValue(sheetName, cellRef)
		require.NoError(t, err)
		assert.Equal(t, "user 7", val)
	}
}
