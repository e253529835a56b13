package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tmsentinel/market-sentinel/internal/config"
	"github.com/tmsentinel/market-sentinel/internal/models"
)

// Embed colors per action.
const (
	colorStrongBuy  = 0x00FF00
	colorBuy        = 0x90EE90
	colorNeutral    = 0xFFD700
	colorSell       = 0xFF6B6B
	colorStrongSell = 0xFF0000
	colorUnknown    = 0x808080
	colorSummary    = 0x4169E1
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      embedFooter  `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Discord delivers signal alerts and cycle summaries to a Discord webhook.
type Discord struct {
	client     *resty.Client
	webhookURL string
}

// NewDiscord builds the webhook notifier.
func NewDiscord(cfg config.NotifyConfig) *Discord {
	return &Discord{
		client:     resty.New().SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		webhookURL: cfg.WebhookURL,
	}
}

// SendSignalAlert posts one trading signal as an embed.
func (d *Discord) SendSignalAlert(ctx context.Context, sig models.TradingSignal) error {
	fields := []embedField{
		{Name: "Entry Price", Value: fmt.Sprintf("%.2f", sig.EntryPrice), Inline: true},
		{Name: "Confidence", Value: fmt.Sprintf("%.0f%%", sig.Confidence*100), Inline: true},
	}
	if sig.StopLoss != nil {
		fields = append(fields, embedField{Name: "Stop Loss", Value: fmt.Sprintf("%.2f", *sig.StopLoss), Inline: true})
	}
	if sig.TakeProfit != nil {
		fields = append(fields, embedField{Name: "Take Profit", Value: fmt.Sprintf("%.2f", *sig.TakeProfit), Inline: true})
	}
	if len(sig.Rationale) > 0 {
		fields = append(fields, embedField{Name: "Rationale", Value: "• " + strings.Join(sig.Rationale, "\n• ")})
	}

	return d.post(ctx, embed{
		Title:       fmt.Sprintf("%s Trading Signal: %s", actionEmoji(sig.Action), sig.Ticker),
		Description: fmt.Sprintf("**Recommended action:** %s", sig.Action),
		Color:       actionColor(sig.Action),
		Fields:      fields,
	})
}

// SendCycleSummary posts the end-of-cycle digest.
func (d *Discord) SendCycleSummary(ctx context.Context, summary models.CycleSummary) error {
	return d.post(ctx, embed{
		Title: "Cycle Summary",
		Description: fmt.Sprintf(
			"Evaluated **%d** tickers: %d strong, %d new alert(s), %d position(s) closed, %d open.",
			summary.SignalsEvaluated, summary.StrongSignals, summary.NewAlerts,
			summary.PositionsClosed, summary.OpenPositions),
		Color: colorSummary,
	})
}

func (d *Discord) post(ctx context.Context, e embed) error {
	if d.webhookURL == "" {
		return fmt.Errorf("no webhook configured")
	}
	now := time.Now()
	e.Footer = embedFooter{Text: "Market Sentinel • " + now.Format("2006-01-02 15:04")}
	e.Timestamp = now.Format(time.RFC3339)

	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Embeds: []embed{e}}).
		Post(d.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode())
	}
	return nil
}

func actionColor(a models.Action) int {
	switch a {
	case models.ActionStrongBuy:
		return colorStrongBuy
	case models.ActionBuy:
		return colorBuy
	case models.ActionNeutral:
		return colorNeutral
	case models.ActionSell:
		return colorSell
	case models.ActionStrongSell:
		return colorStrongSell
	default:
		return colorUnknown
	}
}

func actionEmoji(a models.Action) string {
	switch a {
	case models.ActionStrongBuy:
		return "🚀"
	case models.ActionBuy:
		return "📈"
	case models.ActionNeutral:
		return "➖"
	case models.ActionSell:
		return "📉"
	case models.ActionStrongSell:
		return "🔻"
	default:
		return "❓"
	}
}
