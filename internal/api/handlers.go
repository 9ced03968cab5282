package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"hotelbook/internal/models"
)

const dateLayout = "2006-01-02"

type bookingRequest struct {
	UserID     int64  `json:"user_id"`
	RoomNumber int64  `json:"room_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type bookingResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	RoomNumber int64  `json:"room_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func toResponse(b models.Booking) bookingResponse {
	resp := bookingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		RoomNumber: b.RoomNumber,
		StartDate:  b.StartDate.Format(dateLayout),
		EndDate:    b.EndDate.Format(dateLayout),
	}
	if !b.CreatedAt.IsZero() {
		resp.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	if !b.UpdatedAt.IsZero() {
		resp.UpdatedAt = b.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// decodeBooking parses the request body. Empty date strings stay zero so
// update merging can tell "absent" from "provided".
func decodeBooking(r *http.Request) (models.Booking, bool) {
	var req bookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return models.Booking{}, false
	}

	b := models.Booking{UserID: req.UserID, RoomNumber: req.RoomNumber}
	if req.StartDate != "" {
		parsed, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return models.Booking{}, false
		}
		b.StartDate = parsed
	}
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return models.Booking{}, false
		}
		b.EndDate = parsed
	}
	return b, true
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bookings, err := s.bookings.ListBookings(r.Context())
		if err != nil {
			writeServiceError(w, err, 0)
			return
		}
		out := make([]bookingResponse, 0, len(bookings))
		for _, b := range bookings {
			out = append(out, toResponse(b))
		}
		writeJSON(w, http.StatusOK, map[string]any{"bookings": out})

	case http.MethodPost:
		candidate, ok := decodeBooking(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		created, err := s.bookings.CreateBooking(r.Context(), &candidate)
		if err != nil {
			writeServiceError(w, err, 0)
			return
		}
		writeJSON(w, http.StatusCreated, toResponse(*created))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id < 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		b, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			writeServiceError(w, err, id)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(*b))

	case http.MethodPut, http.MethodPatch:
		incoming, ok := decodeBooking(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		incoming.ID = id

		updated, err := s.bookings.UpdateBooking(r.Context(), &incoming)
		if err != nil {
			writeServiceError(w, err, id)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(*updated))

	case http.MethodDelete:
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "user_id is required")
			return
		}

		if err := s.bookings.DeleteBooking(r.Context(), id, userID); err != nil {
			writeServiceError(w, err, id)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rooms := s.rooms.GetRooms()
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].SortOrder == rooms[j].SortOrder {
			return rooms[i].Number < rooms[j].Number
		}
		return rooms[i].SortOrder < rooms[j].SortOrder
	})

	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (s *HTTPServer) handleRoomAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/rooms/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "availability" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	roomNumber, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || roomNumber <= 0 {
		writeError(w, http.StatusBadRequest, "invalid room number")
		return
	}

	period, err := s.bookings.FindAvailability(r.Context(), roomNumber)
	if err != nil {
		writeServiceError(w, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"start_date": period.StartDate.Format(dateLayout),
		"end_date":   period.EndDate.Format(dateLayout),
	})
}

func (s *HTTPServer) handleOccupancyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.reports == nil {
		writeError(w, http.StatusNotImplemented, "reports are not configured")
		return
	}

	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end date is before start date")
		return
	}

	byRoom, err := s.bookings.OccupancyByDateRange(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err, 0)
		return
	}

	path, err := s.reports.Generate(s.rooms.GetRooms(), byRoom, start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate occupancy report")
		writeError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)

	// Reports are one-shot downloads; drop the file once served.
	_ = os.Remove(path)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
