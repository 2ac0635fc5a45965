package infra

import (
	"context"

	"github.com/slack-go/slack"
)

//go:generate mockgen -source=slack.go -destination=../../handler/slack_mock.go -package=handler

type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	GetUserInfo(userID string) (*slack.User, error)
}
