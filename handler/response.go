package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"
)

// response is the tagged outcome of a routed webhook: an empty ack, an
// ephemeral text visible only to the caller, or a modal replacement.
// The router builds one of these; writeTo turns it into Slack's wire
// format so the flows stay free of transport serialization.
type response struct {
	status int
	body   interface{} // nil means empty body
}

type ephemeralMessage struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func emptyAck() response {
	return response{status: http.StatusOK}
}

func ephemeralText(text string) response {
	return response{
		status: http.StatusOK,
		body: ephemeralMessage{
			ResponseType: "ephemeral",
			Text:         text,
		},
	}
}

func dialogReplace(view *slack.ModalViewRequest) response {
	return response{
		status: http.StatusOK,
		body:   slack.NewUpdateViewSubmissionResponse(view),
	}
}

func serverError() response {
	return response{
		status: http.StatusInternalServerError,
		body: ephemeralMessage{
			ResponseType: "ephemeral",
			Text:         "Something went wrong. Please try again.",
		},
	}
}

func (r response) writeTo(w http.ResponseWriter) {
	if r.body == nil {
		w.WriteHeader(r.status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.status)
	if err := json.NewEncoder(w).Encode(r.body); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}
