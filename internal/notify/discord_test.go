package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

type fakeSender struct {
	channel string
	embed   *discordgo.MessageEmbed
	err     error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel = channelID
	f.embed = embed
	return &discordgo.Message{}, f.err
}

func summary() (core.User, core.Summary) {
	u := core.User{Email: "a@b.c", TotalBudget: decimal.NewFromInt(10000)}
	s := core.Summary{
		User:        u.Email,
		Expense:     decimal.NewFromInt(8001),
		PerCategory: []core.CategoryAmount{{Name: "Food", Amount: decimal.NewFromInt(8001)}},
		TopCategory: "Food",
	}
	return u, s
}

func TestNotifyOverspend(t *testing.T) {
	sender := &fakeSender{}
	d := NewDiscordWithSender(sender, "chan-1", nil)
	u, s := summary()

	if err := d.NotifyOverspend(context.Background(), u, s); err != nil {
		t.Fatal(err)
	}
	if sender.channel != "chan-1" {
		t.Fatalf("sent to %q", sender.channel)
	}
	if !strings.Contains(sender.embed.Description, "a@b.c") || len(sender.embed.Fields) != 4 {
		t.Fatalf("unexpected embed %+v", sender.embed)
	}
}

func TestNotifyOverspendFailure(t *testing.T) {
	d := NewDiscordWithSender(&fakeSender{err: errors.New("401")}, "c", nil)
	u, s := summary()
	if err := d.NotifyOverspend(context.Background(), u, s); !errors.Is(err, core.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestNewDiscordRequiresToken(t *testing.T) {
	if _, err := NewDiscord("", "c", nil); err == nil {
		t.Fatalf("expected error without token")
	}
}
