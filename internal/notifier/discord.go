package notifier

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/convention-booking/internal/config"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/sirupsen/logrus"
)

type Notifier interface {
	NotifyBooking(event models.Event, booking models.Booking) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordNotifier fails when the bot token or channel is not configured.
func NewDiscordNotifier(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}
	if cfg.DiscordNotificationsChannelID == "" {
		return nil, fmt.Errorf("DISCORD_NOTIFICATIONS_CHANNEL_ID is not set")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &DiscordNotifier{
		session:   session,
		channelID: cfg.DiscordNotificationsChannelID,
	}, nil
}

func (n *DiscordNotifier) NotifyBooking(event models.Event, booking models.Booking) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, bookingMessage(event, booking))
	if err != nil {
		logrus.WithError(err).WithField("booking", booking.Code).Error("Failed to send discord message")
		return err
	}
	return nil
}

func bookingMessage(event models.Event, booking models.Booking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 **New Booking** for **%s**\n", event.Name)
	fmt.Fprintf(&b, "**Participant:** %s %s\n", booking.FirstName, booking.LastName)
	if booking.Club != "" {
		fmt.Fprintf(&b, "**Club:** %s\n", booking.Club)
	}
	fmt.Fprintf(&b, "**Code:** `%s`\n", booking.Code)
	if booking.Rate != nil {
		fmt.Fprintf(&b, "**Rate:** %s\n", booking.Rate.Label)
	}
	fmt.Fprintf(&b, "**Amount:** %s", booking.Amount.StringFixed(2))
	if booking.Notes != "" {
		fmt.Fprintf(&b, "\n**Note:** %s", booking.Notes)
	}
	return b.String()
}
