package domain

import (
	"encoding/json"
	"fmt"
	"os"
)

// CannedQA - пара вопрос/ответ для автоответчика. Таблица загружается
// один раз при старте и после этого не изменяется.
type CannedQA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func DefaultCannedQA() []CannedQA {
	return []CannedQA{
		{
			Question: "What types of sarees do you offer?",
			Answer:   "We offer a wide range of sarees including silk, cotton, georgette and designer collections.",
		},
		{
			Question: "Do you provide custom website development?",
			Answer:   "Yes, we build custom websites and web applications tailored to your business. Leave your contact details and our team will reach out.",
		},
	}
}

// LoadCannedQA читает таблицу из JSON файла; при пустом пути
// возвращает встроенный набор.
func LoadCannedQA(path string) ([]CannedQA, error) {
	if path == "" {
		return DefaultCannedQA(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read canned QA file: %w", err)
	}

	var pairs []CannedQA
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse canned QA file: %w", err)
	}

	return pairs, nil
}
