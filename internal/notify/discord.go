// Package notify sends overspend alerts to a Discord channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"finsmart/internal/core"
	"finsmart/internal/log"
)

const colorWarning = 0xE67E22

// Sender is the part of *discordgo.Session the notifier uses.
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Discord struct {
	sender    Sender
	channelID string
	logger    *log.Logger
}

// NewDiscord opens a bot session for token. The session only uses the REST
// API, so no gateway connection is opened.
func NewDiscord(token, channelID string, logger *log.Logger) (*Discord, error) {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(channelID) == "" {
		return nil, errors.New("discord notifier needs DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return NewDiscordWithSender(session, channelID, logger), nil
}

func NewDiscordWithSender(sender Sender, channelID string, logger *log.Logger) *Discord {
	if logger == nil {
		logger = log.Discard()
	}
	return &Discord{sender: sender, channelID: channelID, logger: logger.WithComponent(log.ComponentNotify)}
}

// NotifyOverspend posts an alert for u. Errors wrap core.ErrExternalService.
func (d *Discord) NotifyOverspend(ctx context.Context, u core.User, s core.Summary) error {
	embed := OverspendEmbed(u, s)
	if _, err := d.sender.ChannelMessageSendEmbed(d.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: %w: %w", core.ErrExternalService, err)
	}
	d.logger.InfoContext(ctx, "Overspend alert sent", log.FieldUser, u.Email, log.FieldOperation, log.OpNotify)
	return nil
}

// OverspendEmbed renders the alert body.
func OverspendEmbed(u core.User, s core.Summary) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Budget", Value: core.FormatRupiah(u.TotalBudget), Inline: true},
		{Name: "Pengeluaran", Value: core.FormatRupiah(s.Expense), Inline: true},
		{Name: "Pemasukan", Value: core.FormatRupiah(s.Income), Inline: true},
	}
	if top, ok := s.Top(); ok {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Kategori terbesar",
			Value: fmt.Sprintf("%s (%s)", top.Name, core.FormatRupiah(top.Amount)),
		})
	}
	return &discordgo.MessageEmbed{
		Title:       "Pengeluaran melewati 80% budget",
		Description: fmt.Sprintf("**%s** sudah memakai lebih dari 80%% total budget.", u.Email),
		Color:       colorWarning,
		Fields:      fields,
	}
}
