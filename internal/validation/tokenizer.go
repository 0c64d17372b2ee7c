package validation

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// TokenEstimator estimates how many completion-model tokens a text consumes.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// NewTokenEstimator returns an estimator backed by the tiktoken encoding for
// the given model. When the encoding cannot be loaded (offline environments)
// it falls back to a characters/4 heuristic.
func NewTokenEstimator(model string) TokenEstimator {
	return &tiktokenEstimator{model: model}
}

type tiktokenEstimator struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func (e *tiktokenEstimator) EstimateTokens(text string) int {
	e.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(e.model)
		if err != nil {
			log.Warn().Err(err).Str("model", e.model).Msg("Tokenizer encoding unavailable, using heuristic estimate")
			return
		}
		e.enc = enc
	})

	if e.enc == nil {
		// Rough average of four characters per token for western text.
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(e.enc.Encode(text, nil, nil))
}
