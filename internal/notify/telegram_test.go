package notify

import (
	"testing"
	"time"

	"hotelbook/internal/config"
	"hotelbook/internal/events"
	"hotelbook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestNotifierDisabledWithoutToken(t *testing.T) {
	logger := zerolog.Nop()
	n, err := NewTelegramNotifier(config.TelegramConfig{}, &logger)
	require.NoError(t, err)

	// No bot configured; notifications are silently dropped.
	err = n.NotifyBookingChange(events.EventBookingCreated, models.Booking{ID: 1})
	assert.NoError(t, err)
}

func TestNotifyBookingChange(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	n := &TelegramNotifier{bot: sender, chatID: 100, logger: &logger}

	booking := models.Booking{
		ID:         7,
		UserID:     42,
		RoomNumber: 3,
		StartDate:  time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, n.NotifyBookingChange(events.EventBookingCreated, booking))
	require.Len(t, sender.sent, 1)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(100), msg.ChatID)
	assert.Contains(t, msg.Text, "Booking #7")
	assert.Contains(t, msg.Text, "Room 3")
	assert.Contains(t, msg.Text, "11.03.2026")
}

func TestSubscribeTo(t *testing.T) {
	logger := zerolog.Nop()
	sender := &fakeSender{}
	n := &TelegramNotifier{bot: sender, chatID: 100, logger: &logger}

	bus := events.NewEventBus()
	n.SubscribeTo(bus)

	payload := events.BookingEventPayload{BookingID: 9, UserID: 42, RoomNumber: 1}
	require.NoError(t, bus.PublishJSON(events.EventBookingDeleted, payload))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, msg.Text, "Booking cancelled")
}
