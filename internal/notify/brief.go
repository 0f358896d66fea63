// Package notify отправляет заявки собственников в чат Telegram.
package notify

import (
	"encoding/json"
	"strings"
)

// Подписи категорий; неизвестная категория выводится как есть
var categoryLabels = map[string]string{
	"hotel":      "Отель",
	"apartment":  "Апартамент",
	"sauna":      "Сауна",
	"conference": "Конференц-зал",
}

// Brief - заявка на размещение из формы на сайте.
type Brief struct {
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Metro        string    `json:"metro"`
	ObjectsCount FlexCount `json:"objectsCount"`
	Website      string    `json:"website"`
	Phone        string    `json:"phone"`
	Telegram     string    `json:"telegram"`
	OwnerName    string    `json:"ownerName"`
}

// FlexCount принимает и число, и строку: форма присылает оба варианта.
type FlexCount string

func (c *FlexCount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = FlexCount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = FlexCount(n.String())
	return nil
}

// CategoryLabel переводит код категории в подпись.
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// FormatBrief собирает текст сообщения. Разметка не используется.
func FormatBrief(b Brief) string {
	lines := []string{
		"🏢 Новая заявка на размещение",
		"",
		"📋 Категория: " + CategoryLabel(b.Category),
		"🏠 Наименование: " + b.Name,
		"📍 Адрес: " + b.Address,
	}
	if b.Metro != "" {
		lines = append(lines, "🚇 Метро: "+b.Metro)
	}
	lines = append(lines, "🔢 Количество объектов: "+string(b.ObjectsCount))
	if b.Website != "" {
		lines = append(lines, "🌐 Сайт: "+b.Website)
	}
	lines = append(lines, "📞 Телефон: "+b.Phone)
	if b.Telegram != "" {
		lines = append(lines, "💬 Telegram: "+b.Telegram)
	}
	lines = append(lines, "👤 Имя собственника: "+b.OwnerName)
	return strings.Join(lines, "\n")
}
