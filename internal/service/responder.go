package service

import (
	"agency_chat/internal/domain"
)

// Responder решает, нужен ли автоматический ответ на текст сообщения.
// Сопоставление - строгое равенство строк, без нормализации.
type Responder interface {
	Match(body string) (string, bool)
}

type responder struct {
	pairs []domain.CannedQA
}

func NewResponder(pairs []domain.CannedQA) Responder {
	return &responder{pairs: pairs}
}

func (r *responder) Match(body string) (string, bool) {
	for _, pair := range r.pairs {
		if pair.Question == body {
			return pair.Answer, true
		}
	}
	return "", false
}
