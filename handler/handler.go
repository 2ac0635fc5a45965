package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	_ "github.com/mattn/go-sqlite3"
	"github.com/slack-go/slack"

	"github.com/colecperry/slack-bot/config"
	"github.com/colecperry/slack-bot/domain/infra"
	"github.com/colecperry/slack-bot/domain/model"
)

type Handler struct {
	client        infra.SlackAPI
	ds            infra.Datastore
	ai            *infra.OpenAI
	cfg           *config.Config
	userInfoCache *ttlcache.Cache[string, *slack.User]
}

func NewHandler(cfg *config.Config) (*Handler, error) {
	var ds infra.Datastore
	var err error
	if cfg.DBDriver == "dynamodb" {
		ds, err = infra.NewDynamoDB(cfg.DynamoTableName, cfg.DynamoLocal)
	} else {
		ds, err = infra.NewDataBase(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}

	ai, err := infra.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		client:        slack.New(cfg.BotToken),
		ds:            ds,
		ai:            ai,
		cfg:           cfg,
		userInfoCache: ttlcache.New(ttlcache.WithTTL[string, *slack.User](24 * time.Hour)),
	}
	go h.userInfoCache.Start()
	return h, nil
}

func (h *Handler) Handle() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.HandleWebhook)
	slog.Info("Server listening", slog.String("bind", h.cfg.Listen))
	return http.ListenAndServe(h.cfg.Listen, mux)
}

// HandleWebhook is the single inbound endpoint. It verifies the signature
// against the raw body, then routes by path suffix, falling back to field
// presence for installs that map everything to one URL.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if !h.verifyRequest(r.Header, body) {
		http.Error(w, "bad signature", http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/standup"):
		h.handleStandup(r.Context(), form).writeTo(w)
	case strings.HasSuffix(r.URL.Path, "/interactive"):
		h.handleInteractive(form).writeTo(w)
	case form.Has("command"):
		h.handleStandup(r.Context(), form).writeTo(w)
	case form.Has("payload"):
		h.handleInteractive(form).writeTo(w)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleStandup covers the slash command. Inline text is saved right
// away; without text we open the input modal, degrading to an ephemeral
// hint so Slack never sees a late or failed acknowledgement.
func (h *Handler) handleStandup(ctx context.Context, form url.Values) response {
	userID := form.Get("user_id")
	userName := form.Get("user_name")
	triggerID := form.Get("trigger_id")
	text := strings.TrimSpace(form.Get("text"))

	if text == "" {
		switch h.openStandupModal(ctx, triggerID) {
		case dialogOK:
			return emptyAck()
		case dialogTimedOut:
			slog.Warn("views.open timed out", slog.String("user_id", userID))
		case dialogFailed:
			// already logged at the call site
		}
		return ephemeralText("Couldn't open the modal just now. Try again, or type `/standup your update`.")
	}

	saved, prev, err := h.saveStandup(userID, userName, text)
	if err != nil {
		slog.Error("saveStandup failed", slog.Any("err", err))
		return serverError()
	}

	ack := fmt.Sprintf(":white_check_mark: Saved your update at *%s* (UTC)\n> %s", saved.Timestamp, saved.Message)
	if prev != nil {
		ack += fmt.Sprintf("\n\n*Previous:* _%s_\n> %s", prev.Timestamp, prev.Message)
	}
	return ephemeralText(ack)
}

// handleInteractive covers modal submissions. Slack posts a form field
// named "payload" holding a JSON-encoded event; some event types carry
// none, which gets a benign empty ack rather than an error.
func (h *Handler) handleInteractive(form url.Values) response {
	payloadRaw := form.Get("payload")
	if payloadRaw == "" {
		return emptyAck()
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payloadRaw), &callback); err != nil {
		slog.Error("failed to parse interactive payload", slog.Any("err", err))
		return serverError()
	}

	if callback.Type != slack.InteractionTypeViewSubmission {
		return emptyAck()
	}

	text := strings.TrimSpace(submittedStandupText(&callback))

	saved, prev, err := h.saveStandup(callback.User.ID, callback.User.Name, text)
	if err != nil {
		slog.Error("saveStandup failed", slog.Any("err", err))
		return serverError()
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf(":white_check_mark: Saved at *%s* (UTC)\n\n> %s", saved.Timestamp, saved.Message),
				false, false),
			nil, nil,
		),
	}
	if prev != nil {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("*Previous:* _%s_\n> %s", prev.Timestamp, prev.Message),
				false, false),
			nil, nil,
		))
	}

	return dialogReplace(&slack.ModalViewRequest{
		Type:   slack.VTModal,
		Title:  slack.NewTextBlockObject("plain_text", "Standup Submitted!", false, false),
		Close:  slack.NewTextBlockObject("plain_text", "Close", false, false),
		Blocks: slack.Blocks{BlockSet: blocks},
	})
}

func submittedStandupText(callback *slack.InteractionCallback) string {
	if callback.View.State == nil {
		return ""
	}
	return callback.View.State.Values["standup_input"]["standup_text"].Value
}

// saveStandup persists the entry and fetches the caller's latest two,
// newest first, so the acknowledgement can show the previous update. A
// failed context fetch only costs the context, not the save.
func (h *Handler) saveStandup(userID, userName, text string) (*model.Standup, *model.Standup, error) {
	now := time.Now()
	s := &model.Standup{
		UserID:    userID,
		UserName:  userName,
		Timestamp: model.FormatTimestamp(now),
		Message:   text,
		CreatedAt: now,
	}
	if err := h.ds.SaveStandup(s); err != nil {
		return nil, nil, fmt.Errorf("SaveStandup failed: %w", err)
	}

	latest, err := h.ds.GetLatestStandups(userID, 2)
	if err != nil {
		slog.Error("GetLatestStandups failed", slog.Any("err", err))
		return s, nil, nil
	}
	var prev *model.Standup
	if len(latest) == 2 {
		prev = &latest[1]
	}
	return s, prev, nil
}

type dialogResult int

const (
	dialogOK dialogResult = iota
	dialogTimedOut
	dialogFailed
)

// openStandupModal calls views.open under a short deadline so the slash
// command can still acknowledge quickly when Slack's API is slow.
func (h *Handler) openStandupModal(ctx context.Context, triggerID string) dialogResult {
	view := slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: "standup_modal",
		Title:      slack.NewTextBlockObject("plain_text", "Daily Standup", false, false),
		Submit:     slack.NewTextBlockObject("plain_text", "Submit", false, false),
		Close:      slack.NewTextBlockObject("plain_text", "Cancel", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				&slack.InputBlock{
					Type:    slack.MBTInput,
					BlockID: "standup_input",
					Label: &slack.TextBlockObject{
						Type: "plain_text",
						Text: "Your standup update",
					},
					Element: &slack.PlainTextInputBlockElement{
						Type:      slack.METPlainTextInput,
						ActionID:  "standup_text",
						Multiline: true,
						Placeholder: slack.NewTextBlockObject(
							"plain_text", "What did you work on today?", false, false),
					},
				},
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, h.cfg.DialogTimeout)
	defer cancel()

	_, err := h.client.OpenViewContext(ctx, triggerID, view)
	switch {
	case err == nil:
		return dialogOK
	case errors.Is(err, context.DeadlineExceeded):
		return dialogTimedOut
	default:
		slog.Error("views.open failed", slog.Any("err", err))
		return dialogFailed
	}
}

func getUserPreferredName(user *slack.User) string {
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName
	}
	if user.RealName != "" {
		return user.RealName
	}
	return user.Name
}

func (h *Handler) getUserInfo(userID string) (*slack.User, error) {
	cacheKey := "user_" + userID
	if user := h.userInfoCache.Get(cacheKey); user != nil {
		return user.Value(), nil
	}
	user, err := h.client.GetUserInfo(userID)
	if err != nil {
		return nil, err
	}
	h.userInfoCache.Set(cacheKey, user, ttlcache.DefaultTTL)
	return user, nil
}
