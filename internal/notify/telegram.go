package notify

import (
	"encoding/json"
	"fmt"

	"hotelbook/internal/config"
	"hotelbook/internal/events"
	"hotelbook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the subset of the bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes booking changes to the manager chat. With no
// bot token configured it stays disabled and every call is a no-op.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" {
		logger.Info().Msg("Telegram notifications disabled: no bot token")
		return &TelegramNotifier{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ManagerChatID,
		logger: logger,
	}, nil
}

// SubscribeTo wires the notifier to booking events on the bus.
func (n *TelegramNotifier) SubscribeTo(bus *events.EventBus) {
	handler := func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		return n.NotifyBookingChange(event.Type, models.Booking{
			ID:         payload.BookingID,
			UserID:     payload.UserID,
			RoomNumber: payload.RoomNumber,
			StartDate:  payload.StartDate,
			EndDate:    payload.EndDate,
		})
	}

	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingUpdated, handler)
	bus.Subscribe(events.EventBookingDeleted, handler)
}

func (n *TelegramNotifier) NotifyBookingChange(eventType string, booking models.Booking) error {
	if n.bot == nil || n.chatID == 0 {
		return nil
	}

	text := fmt.Sprintf("%s %s\nBooking #%d\nRoom %d, user %d\n%s to %s",
		eventIcon(eventType),
		eventTitle(eventType),
		booking.ID,
		booking.RoomNumber,
		booking.UserID,
		booking.StartDate.Format("02.01.2006"),
		booking.EndDate.Format("02.01.2006"),
	)

	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("Failed to send telegram notification")
		return err
	}
	return nil
}

func eventIcon(eventType string) string {
	switch eventType {
	case events.EventBookingCreated:
		return "✅"
	case events.EventBookingUpdated:
		return "✏️"
	case events.EventBookingDeleted:
		return "❌"
	default:
		return "ℹ️"
	}
}

func eventTitle(eventType string) string {
	switch eventType {
	case events.EventBookingCreated:
		return "New booking"
	case events.EventBookingUpdated:
		return "Booking changed"
	case events.EventBookingDeleted:
		return "Booking cancelled"
	default:
		return "Booking event"
	}
}
