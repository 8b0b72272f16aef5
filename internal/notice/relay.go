package notice

import (
	"fmt"
	"strconv"
	"strings"
)

// Submitted confirms to the asker that the question reached support.
func Submitted() Notice {
	return Notice{Text: "✅ Ваш вопрос принят! Ожидайте ответа от нашей поддержки."}
}

// Armed confirms to the administrator that the next message answers userID.
// released lists questions that were armed before and are no longer.
func Armed(userID int64, question string, released []int64) Notice {
	text := fmt.Sprintf("✏️ Введите ответ для пользователя (ID: %d):\n\nВопрос: %s", userID, question)
	if len(released) > 0 {
		ids := make([]string, len(released))
		for i, id := range released {
			ids[i] = strconv.FormatInt(id, 10)
		}
		text += "\n\nℹ️ Ожидание ответа снято с: " + strings.Join(ids, ", ")
	}
	return Notice{Text: text}
}

// Closed replaces the question notice after a silent close.
func Closed() Notice {
	return Notice{Text: "❌ Вопрос закрыт без ответа."}
}

// NotFound replaces the question notice when the record is already gone.
func NotFound() Notice {
	return Notice{Text: "❌ Вопрос не найден или уже удален."}
}

// Delivered confirms to the administrator that the answer went out.
func Delivered(userID int64) Notice {
	return Notice{Text: fmt.Sprintf("✅ Ответ отправлен пользователю (ID: %d)!", userID)}
}

// DeliveryFailed reports the transport error; the question is dropped.
func DeliveryFailed(err error) Notice {
	return Notice{Text: fmt.Sprintf("❌ Ошибка отправки: %v", err)}
}

// PersistWarning tells the administrator that storage is behind memory.
func PersistWarning(err error) Notice {
	return Notice{Text: fmt.Sprintf("⚠️ Не удалось сохранить вопросы на диск: %v", err)}
}

// Short callback answers shown as toasts or alerts.
const (
	ToastArmed        = "Готов к ответу"
	ToastClosed       = "Вопрос закрыт"
	AlertUnauthorized = "❌ Нет доступа"
	AlertBadToken     = "❌ Ошибка обработки"
)

// Digest summarizes pending work for the scheduled reminder.
func (f Formatter) Digest(pending int) Notice {
	return Notice{Text: fmt.Sprintf("⏰ Ожидают ответа: %d. Список: /questions", pending)}
}
