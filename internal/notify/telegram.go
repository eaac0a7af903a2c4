// Package notify delivers period digests to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"cashburn/internal/cli"
	"cashburn/internal/model"
)

var log = logrus.WithField("component", "notify")

// ErrNotConfigured reports missing Telegram credentials. Callers should
// print setup instructions rather than treat this as a failure.
var ErrNotConfigured = errors.New("telegram token and chat id not configured")

// Notifier sends plain-text messages to a single Telegram chat.
type Notifier struct {
	token  string
	chatID int64
}

func New(token string, chatID int64) *Notifier {
	return &Notifier{token: token, chatID: chatID}
}

// Configured reports whether both the token and the chat id are set.
func (n *Notifier) Configured() bool {
	return n.token != "" && n.chatID != 0
}

// Send delivers text to the configured chat. The HTTP round trips are
// bounded by the context deadline when one is set.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Configured() {
		return ErrNotConfigured
	}

	client := &http.Client{Timeout: 30 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		client.Timeout = time.Until(deadline)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(n.token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return fmt.Errorf("telegram connect: %w", err)
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	log.WithField("chat_id", n.chatID).Debug("digest sent")
	return nil
}

// Digest formats a period summary, optional budget pace, and insights as
// one plain-text message.
func Digest(title string, summary model.PeriodSummary, pace *model.PaceReport, insights []model.Insight) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", title)
	fmt.Fprintf(&b, "Income:   %s\n", cli.FormatMoney(summary.Inflow))
	fmt.Fprintf(&b, "Spending: %s\n", cli.FormatMoney(summary.Outflow))
	fmt.Fprintf(&b, "Net:      %s (%d transactions)\n", cli.FormatSignedMoney(summary.Net), summary.Count)

	if pace != nil && pace.Budget.IsPositive() {
		fmt.Fprintf(&b, "\nBudget: %s of %s spent (%s, %s)\n",
			cli.FormatMoney(pace.Spent),
			cli.FormatMoney(pace.Budget),
			cli.FormatRatio(pace.Ratio),
			pace.Status,
		)
		if pace.ProjectedDelta.IsPositive() {
			fmt.Fprintf(&b, "Projected to finish %s over budget.\n",
				cli.FormatMoney(pace.ProjectedDelta))
		}
	}

	if len(insights) > 0 {
		b.WriteString("\n")
		for _, ins := range insights {
			fmt.Fprintf(&b, "[%s] %s\n", ins.Severity, ins.Message)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
