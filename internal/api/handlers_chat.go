// Tradecaster - Real-time Token Purchase Commentary
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tradecaster

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/tradecaster/internal/commentary"
	"github.com/tomtom215/tradecaster/internal/logging"
	"github.com/tomtom215/tradecaster/internal/models"
	"github.com/tomtom215/tradecaster/internal/pipeline"
	"github.com/tomtom215/tradecaster/internal/speech"
)

// Chat answers a free-text message in the commentary persona. When the
// generator is missing or fails, a canned line is returned instead.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	gen := h.deps.Generator
	if gen == nil || !gen.Configured() {
		respondSuccess(w, models.ChatResponse{Text: commentary.RandomFallback(), Fallback: true})
		return
	}

	text, err := gen.Reply(r.Context(), req.Message)
	if err != nil || text == "" {
		if err != nil && !errors.Is(err, commentary.ErrNotConfigured) {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Chat reply failed, using fallback")
		}
		respondSuccess(w, models.ChatResponse{Text: commentary.RandomFallback(), Fallback: true})
		return
	}

	respondSuccess(w, models.ChatResponse{Text: text})
}

// Voice synthesizes text and returns the MP3 bytes.
func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	var req models.VoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	synth := h.deps.Synthesizer
	if synth == nil || !synth.Configured() {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotConfigured, "Speech synthesis is not configured", nil)
		return
	}

	audio, err := synth.Synthesize(r.Context(), pipeline.SanitizeForSpeech(req.Text))
	switch {
	case errors.Is(err, speech.ErrNotConfigured):
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotConfigured, "Speech synthesis is not configured", nil)
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, ErrCodeSynthesisError, "Speech synthesis failed", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write audio response")
	}
}
