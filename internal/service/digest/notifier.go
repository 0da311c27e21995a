package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/andres10976/cve-monitor/internal/config"
	"github.com/andres10976/cve-monitor/internal/model"
)

// ErrNotify wraps every failure to deliver a digest.
var ErrNotify = errors.New("notify")

// Outcome is the result of a Notify call.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type reportLister interface {
	List(day time.Time) ([]model.Report, error)
}

// Notifier gathers a day's report artifacts and emails them.
type Notifier struct {
	reports reportLister
	sender  Sender
	now     func() time.Time
}

func NewNotifier(reports reportLister, sender Sender, now func() time.Time) *Notifier {
	return &Notifier{reports: reports, sender: sender, now: now}
}

// Collect lists the artifacts created on the UTC date of day.
func (n *Notifier) Collect(day time.Time) ([]model.Report, error) {
	reports, err := n.reports.List(day)
	if err != nil {
		return nil, fmt.Errorf("collect reports: %w", err)
	}
	return reports, nil
}

// Notify emails reports using cfg. A nil cfg is not an error: the digest is
// skipped.
func (n *Notifier) Notify(ctx context.Context, cfg *config.Email, reports []model.Report) (Outcome, error) {
	if cfg == nil {
		slog.Warn("email configuration not provided, skipping email sending")
		return OutcomeSkipped, nil
	}

	msg, err := n.compose(cfg, reports)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %w", ErrNotify, err)
	}

	mode := SelectMode(cfg)
	if err := n.sender.Send(ctx, cfg, mode, msg); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %w", ErrNotify, err)
	}

	slog.Info("email sent successfully",
		"to", strings.Join(cfg.To, ", "), "reports", len(reports), "mode", mode.String())
	return OutcomeSent, nil
}

func (n *Notifier) compose(cfg *config.Email, reports []model.Report) (*Message, error) {
	var body strings.Builder
	body.WriteString("Daily CVE vulnerability report is attached.\n\n")
	if len(reports) > 0 {
		body.WriteString("Generated reports:\n")
		for _, r := range reports {
			fmt.Fprintf(&body, "- %s\n", r.Name)
		}
	}

	msg := &Message{
		From:    cfg.From,
		To:      cfg.To,
		Subject: "CVE Vulnerability Report - " + n.now().UTC().Format("2006-01-02"),
		Body:    body.String(),
	}
	for _, r := range reports {
		content, err := os.ReadFile(r.Path)
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", r.Name, err)
		}
		msg.Attachments = append(msg.Attachments, Attachment{Name: r.Name, Content: content})
	}
	return msg, nil
}
