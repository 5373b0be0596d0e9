package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ShinyNito/jobdash/core/utils"
	"github.com/ShinyNito/jobdash/dashboard"
)

const (
	headerSignature  = "X-Jobdash-Signature"
	headerTimestamp  = "X-Jobdash-Timestamp"
	webhookTolerance = 5 * time.Minute
)

type changeNotification struct {
	Resources []dashboard.Resource `json:"resources"`
}

// changes 接收上游的变更通知并失效对应缓存
func (a *app) changes(w http.ResponseWriter, r *http.Request) {
	if a.webhookSecret == "" {
		http.Error(w, "webhooks disabled", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read body", http.StatusRequestEntityTooLarge)
		return
	}

	err = utils.VerifyPayload(a.webhookSecret,
		r.Header.Get(headerSignature), r.Header.Get(headerTimestamp),
		body, a.now(), webhookTolerance)
	if err != nil {
		a.logger.WarnContext(r.Context(), "webhook rejected", slog.Any("error", err))
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var note changeNotification
	if err := json.Unmarshal(body, &note); err != nil {
		a.writeError(w, r, errors.Join(dashboard.ErrInvalidArgument, err))
		return
	}

	removed := 0
	for _, res := range note.Resources {
		n, err := a.dash.InvalidateResource(res)
		if err != nil {
			a.logger.WarnContext(r.Context(), "skip unknown resource", slog.String("resource", string(res)))
			continue
		}
		removed += n
	}

	a.logger.InfoContext(r.Context(), "change notification applied",
		slog.Int("resources", len(note.Resources)),
		slog.Int("removed", removed),
	)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
