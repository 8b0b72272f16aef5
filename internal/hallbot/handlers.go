package hallbot

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/hallbot/core/logger"
	tg "github.com/m3rciful/hallbot/core/telegram"
	"github.com/m3rciful/hallbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/hallbot/core/telegram/helpers"
	"github.com/m3rciful/hallbot/internal/notice"
	"github.com/m3rciful/hallbot/internal/questions"
	"github.com/m3rciful/hallbot/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// registerHandlers fills reg with every command, menu alias and callback.
func (a *App) registerHandlers(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{Handler: a.onStart, Description: "Главное меню"})
	reg.RegisterCommand("/help", commands.Command{Handler: a.onHelp, Description: "Справка"})
	reg.RegisterCommand("/schedule", commands.Command{
		Handler: a.onSchedule, Description: "Расписание", Hidden: true,
		Aliases: []string{LabelSchedule},
	})
	reg.RegisterCommand("/tickets", commands.Command{
		Handler: a.onTickets, Description: "Билеты", Hidden: true,
		Aliases: []string{LabelTickets},
	})
	reg.RegisterCommand("/support", commands.Command{
		Handler: a.onSupport, Description: "Задать вопрос", Hidden: true,
		Aliases: []string{LabelSupport},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler: a.onStats, Description: "Статистика вопросов", Access: commands.AdminOnly,
		Aliases: []string{LabelStats},
	})
	reg.RegisterCommand("/questions", commands.Command{
		Handler: a.onQuestions, Description: "Неотвеченные вопросы", Access: commands.AdminOnly,
	})
	reg.SetTextFallback(a.onText)

	if err := reg.RegisterCallback(notice.ArmAction, a.onQuestionAction); err != nil {
		return err
	}
	return reg.RegisterCallback(notice.CloseAction, a.onQuestionAction)
}

func (a *App) isAdmin(c tele.Context) bool {
	return a.relay.IsAdmin(tghelpers.SenderID(c))
}

func (a *App) onStart(c tele.Context) error {
	isAdmin := a.isAdmin(c)
	return tghelpers.SendText(c, greeting(a.cfg.Support.VenueName, isAdmin), mainMenu(isAdmin))
}

func (a *App) onHelp(c tele.Context) error {
	return tghelpers.SendMD(c, helpText)
}

func (a *App) onSchedule(c tele.Context) error {
	return tghelpers.SendText(c, scheduleText(a.cfg.Support.WebsiteURL))
}

func (a *App) onTickets(c tele.Context) error {
	return tghelpers.SendText(c, ticketsText(a.cfg.Support.WebsiteURL))
}

// onSupport prompts users for a question; the administrator has nothing to ask.
func (a *App) onSupport(c tele.Context) error {
	if a.isAdmin(c) {
		return nil
	}
	return tghelpers.SendText(c, supportPrompt)
}

func (a *App) onAdminOnly(c tele.Context) error {
	return tghelpers.SendText(c, adminOnly)
}

func (a *App) onStats(c tele.Context) error {
	st, err := a.relay.Stats(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	return a.reply(c, a.relay.Formatter().Stats(st))
}

func (a *App) onQuestions(c tele.Context) error {
	pending, err := a.relay.Pending(tghelpers.BuildContext(c))
	if err != nil {
		return err
	}
	return a.reply(c, a.relay.Formatter().QuestionList(pending, a.cfg.Support.ListLimit))
}

// onText handles free text: an answer when it comes from the administrator,
// a question otherwise. Menu labels never get here.
func (a *App) onText(c tele.Context) error {
	text := c.Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if a.relay.IsAdmin(sender.ID) {
		err := a.relay.Deliver(ctx, sender.ID, text)
		if errors.Is(err, relay.ErrNothingArmed) {
			return nil
		}
		return err
	}

	return a.relay.Submit(ctx, relay.Asker{
		ID:          sender.ID,
		Handle:      tghelpers.Handle(sender),
		DisplayName: tghelpers.FullName(sender),
	}, text)
}

// onQuestionAction serves the "reply" and "close" buttons of a question notice.
func (a *App) onQuestionAction(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	actor := tghelpers.SenderID(c)

	action, userID, err := notice.ParseToken(c.Callback().Data)
	if err != nil {
		if !a.relay.IsAdmin(actor) {
			return respondAlert(c, notice.AlertUnauthorized)
		}
		logger.Warn(ctx, "relay", "relay.token",
			slog.String("status", "skip"),
			slog.String("cause", "malformed"),
			slog.String("err", err.Error()),
		)
		return respondAlert(c, notice.AlertBadToken)
	}

	origin := originOf(c)
	toast := ""
	switch action {
	case notice.ArmAction:
		err = a.relay.Arm(ctx, actor, userID, origin)
		toast = notice.ToastArmed
	case notice.CloseAction:
		err = a.relay.Close(ctx, actor, userID, origin)
		toast = notice.ToastClosed
	default:
		return respondAlert(c, notice.AlertBadToken)
	}

	switch {
	case err == nil:
		return c.Respond(&tele.CallbackResponse{Text: toast})
	case errors.Is(err, relay.ErrUnauthorized):
		return respondAlert(c, notice.AlertUnauthorized)
	case errors.Is(err, questions.ErrNotFound):
		return c.Respond()
	default:
		_ = c.Respond()
		return err
	}
}

func respondAlert(c tele.Context, text string) error {
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

// originOf identifies the notice that carried the pressed button.
func originOf(c tele.Context) relay.Message {
	msg := c.Message()
	if msg == nil || msg.Chat == nil {
		return relay.Message{}
	}
	return relay.Message{ChatID: msg.Chat.ID, ID: msg.ID}
}

// reply sends a formatted notice to the chat of the update.
func (a *App) reply(c tele.Context, n notice.Notice) error {
	rm := markup(n.Actions)
	if n.Markdown {
		return tghelpers.SendMD(c, n.Text, rm)
	}
	return tghelpers.SendText(c, n.Text, rm)
}

// UnknownText is unused: the registry text fallback takes all free text.
func (a *App) UnknownText() tele.HandlerFunc { return nil }

// UnknownDocument ignores files; the relay carries text only.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(tele.Context) error { return nil }
}

// UnknownCallback answers buttons from older deployments with an error alert.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return respondAlert(c, notice.AlertBadToken)
	}
}
