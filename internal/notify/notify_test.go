package notify

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
	"github.com/zulandar/swapyard/internal/models"
)

var sample = Summary{
	RunID:   "3f2a9c1e-0000-4000-8000-000000000000",
	Trigger: "api",
	Cycles:  1,
	CycleTrades: []models.CycleTrade{
		{GiverID: 1, ReceiverID: 2, ItemID: 10},
		{GiverID: 2, ReceiverID: 1, ItemID: 20},
	},
	DirectTrades: []models.DirectTrade{{UserA: 1, UserB: 2, ItemA: 10, ItemB: 20}},
}

func TestText(t *testing.T) {
	got := Text(sample)
	for _, want := range []string{
		"Matching round 3f2a9c1e",
		"Hand-overs: 2",
		"participant 1 gives item 10 to participant 2",
		"swap available: 1 (item 10) <-> 2 (item 20)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Text() missing %q in:\n%s", want, got)
		}
	}
	if !(Summary{}).Empty() {
		t.Error("zero Summary should be empty")
	}
}

type mockSlack struct {
	channel string
	calls   int
	err     error
}

func (m *mockSlack) PostMessageContext(_ context.Context, channelID string, _ ...slackapi.MsgOption) (string, string, error) {
	m.calls++
	m.channel = channelID
	return channelID, "1700000000.000100", m.err
}

func TestSlack_Notify(t *testing.T) {
	mock := &mockSlack{}
	n, err := NewSlack(SlackOpts{ChannelID: "C123", Client: mock})
	if err != nil {
		t.Fatalf("NewSlack: %v", err)
	}
	if err := n.Notify(context.Background(), sample); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if mock.calls != 1 || mock.channel != "C123" {
		t.Errorf("calls = %d channel = %q, want 1 call to C123", mock.calls, mock.channel)
	}

	mock.err = errors.New("channel_not_found")
	if err := n.Notify(context.Background(), sample); err == nil || !strings.Contains(err.Error(), "slack: post message") {
		t.Errorf("err = %v, want wrapped post error", err)
	}
}

func TestNewSlack_Validation(t *testing.T) {
	if _, err := NewSlack(SlackOpts{ChannelID: "C1"}); err == nil {
		t.Error("expected error without token")
	}
	if _, err := NewSlack(SlackOpts{BotToken: "xoxb-1"}); err == nil {
		t.Error("expected error without channel")
	}
}

type mockDiscord struct {
	sent     []*discordgo.MessageSend
	failures int // rate-limit responses before success
}

func (m *mockDiscord) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.failures > 0 {
		m.failures--
		return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	}
	m.sent = append(m.sent, data)
	return &discordgo.Message{}, nil
}

func TestDiscord_Notify(t *testing.T) {
	mock := &mockDiscord{failures: 1}
	n, err := NewDiscord(DiscordOpts{ChannelID: "42", Session: mock})
	if err != nil {
		t.Fatalf("NewDiscord: %v", err)
	}
	n.baseBackoff = time.Millisecond

	if err := n.Notify(context.Background(), sample); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(mock.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mock.sent))
	}
	embed := mock.sent[0].Embeds[0]
	if embed.Color != 0x36a64f {
		t.Errorf("Color = %#x, want %#x", embed.Color, 0x36a64f)
	}
	if len(embed.Fields) != 4 {
		t.Errorf("len(Fields) = %d, want 4", len(embed.Fields))
	}
}

func TestDiscord_GivesUpAfterRetries(t *testing.T) {
	mock := &mockDiscord{failures: maxRetries + 1}
	n, _ := NewDiscord(DiscordOpts{ChannelID: "42", Session: mock})
	n.baseBackoff = time.Millisecond
	if err := n.Notify(context.Background(), sample); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

type failing struct{ err error }

func (f failing) Notify(context.Context, Summary) error { return f.err }

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockSlack{}
	s, _ := NewSlack(SlackOpts{ChannelID: "C1", Client: mock})
	err := Multi{failing{boom}, s}.Notify(context.Background(), sample)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if mock.calls != 1 {
		t.Errorf("later notifiers must still run, calls = %d", mock.calls)
	}
}

func TestParseHexColor(t *testing.T) {
	if got := parseHexColor("#2196f3"); got != 0x2196f3 {
		t.Errorf("parseHexColor = %#x", got)
	}
}
