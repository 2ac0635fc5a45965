package handler

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"

	"github.com/colecperry/slack-bot/domain/model"
)

// StartDigestScheduler runs the daily digest at the configured local
// time. The job is not retried on failure; the next scheduled run (or a
// one-shot -digest invocation) covers it.
func (h *Handler) StartDigestScheduler() error {
	spec, err := dailyCronSpec(h.cfg.DigestAt)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(h.cfg.Location()))
	if _, err := c.AddFunc(spec, func() {
		if err := h.RunDailyDigest(); err != nil {
			slog.Error("daily digest failed", slog.Any("err", err))
		}
	}); err != nil {
		return err
	}
	c.Start()
	slog.Info("Digest scheduled", slog.String("at", h.cfg.DigestAt), slog.String("tz", h.cfg.Timezone))
	return nil
}

func dailyCronSpec(at string) (string, error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid DIGEST_AT %q, expected HH:MM", at)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in DIGEST_AT %q", at)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in DIGEST_AT %q", at)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// RunDailyDigest posts yesterday's standups, grouped per user, to the
// summary channel.
func (h *Handler) RunDailyDigest() error {
	label, start, end := digestWindow(time.Now(), h.cfg.Location())

	standups, err := h.ds.GetStandupsBetween(start, end)
	if err != nil {
		return fmt.Errorf("GetStandupsBetween failed: %w", err)
	}
	slog.Info("Digest window", slog.String("day", label), slog.Int("entries", len(standups)))

	blocks := h.digestBlocks(label, standups)

	if h.ai != nil && len(standups) > 0 {
		highlights, err := h.ai.GenerateHighlights(label, standups)
		if err != nil {
			slog.Error("GenerateHighlights failed", slog.Any("err", err))
		} else {
			blocks = append(blocks,
				slack.NewDividerBlock(),
				slack.NewSectionBlock(
					slack.NewTextBlockObject("mrkdwn", ":sparkles: *Highlights:*\n"+highlights, false, false),
					nil, nil,
				),
			)
		}
	}

	if _, _, err := h.client.PostMessage(
		h.cfg.SummaryChannel,
		slack.MsgOptionText("Daily standup summary", false),
		slack.MsgOptionBlocks(blocks...),
	); err != nil {
		return fmt.Errorf("PostMessage failed: %w", err)
	}
	return nil
}

// digestWindow resolves yesterday in loc as UTC bounds [start, end) and
// a friendly label like "Tuesday, Aug 12".
func digestWindow(now time.Time, loc *time.Location) (string, time.Time, time.Time) {
	y := now.In(loc).AddDate(0, 0, -1)
	start := time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return y.Format("Monday, Jan 2"), start.UTC(), end.UTC()
}

func (h *Handler) digestBlocks(label string, standups []model.Standup) []slack.Block {
	if len(standups) == 0 {
		return []slack.Block{
			slack.NewSectionBlock(
				slack.NewTextBlockObject("mrkdwn",
					fmt.Sprintf("*Standups for %s*\n_No submissions yesterday._", label),
					false, false),
				nil, nil,
			),
		}
	}

	type userKey struct {
		id   string
		name string
	}
	byUser := map[userKey][]model.Standup{}
	for _, s := range standups {
		k := userKey{id: s.UserID, name: s.UserName}
		byUser[k] = append(byUser[k], s)
	}

	names := map[userKey]string{}
	keys := make([]userKey, 0, len(byUser))
	for k, rows := range byUser {
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].Timestamp < rows[j].Timestamp
		})
		name := k.name
		if name == "" {
			name = h.lookupUserName(k.id)
		}
		names[k] = name
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if names[keys[i]] != names[keys[j]] {
			return names[keys[i]] < names[keys[j]]
		}
		return keys[i].id < keys[j].id
	})

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", fmt.Sprintf("*Standups for %s*", label), false, false),
			nil, nil,
		),
		slack.NewDividerBlock(),
	}
	for _, k := range keys {
		display := names[k]
		if k.id != "" {
			display = fmt.Sprintf("<@%s>", k.id)
		}
		if display == "" {
			display = "Unknown user"
		}

		var lines []string
		for _, s := range byUser[k] {
			lines = append(lines, "• "+s.Message)
		}
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*%s*\n%s", display, strings.Join(lines, "\n")),
				false, false),
			nil, nil,
		))
	}
	return blocks
}

// lookupUserName resolves a display name for entries stored without one.
func (h *Handler) lookupUserName(userID string) string {
	if userID == "" {
		return ""
	}
	user, err := h.getUserInfo(userID)
	if err != nil {
		slog.Error("GetUserInfo failed", slog.Any("err", err), slog.String("user_id", userID))
		return ""
	}
	return getUserPreferredName(user)
}
