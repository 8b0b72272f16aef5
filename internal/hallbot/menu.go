package hallbot

import (
	"fmt"

	"github.com/m3rciful/hallbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Reply keyboard labels. Text equal to one of them is a menu action, never a
// question or an answer.
const (
	LabelSchedule = "📅 Расписание"
	LabelTickets  = "🎫 Купить билеты"
	LabelSupport  = "📞 Поддержка"
	LabelStats    = "📊 Статистика"
)

const (
	greetingAdmin = "🎭 Админка"
	supportPrompt = "💬 Напишите ваш вопрос, и мы обязательно ответим!"
	adminOnly     = "❌ Эта команда доступна только администратору."
	healthBanner  = "✅ Usupovo Bot is running!"

	helpText = "📖 *Доступные команды:*\n\n" +
		"• /start - Главное меню\n" +
		"• /help - Справка\n" +
		"• " + LabelSchedule + " - Посмотреть расписание мероприятий\n" +
		"• " + LabelTickets + " - Перейти к покупке билетов\n" +
		"• " + LabelSupport + " - Задать вопрос\n\n" +
		"💡 Используйте кнопки меню для навигации."
)

func greeting(venue string, isAdmin bool) string {
	if isAdmin {
		return greetingAdmin
	}
	return fmt.Sprintf("🎭 Добро пожаловать в %s!", venue)
}

func scheduleText(url string) string {
	return "📆 Расписание мероприятий:\n" + url
}

func ticketsText(url string) string {
	return "🎟️ Купить билеты:\n" + url
}

// mainMenu differs only in the last row: support for users, statistics for
// the administrator.
func mainMenu(isAdmin bool) *tele.ReplyMarkup {
	if isAdmin {
		return keyboard.Column(LabelSchedule, LabelTickets, LabelStats)
	}
	return keyboard.Column(LabelSchedule, LabelTickets, LabelSupport)
}
