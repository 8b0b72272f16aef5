// Package notice renders every text the support relay sends.
// Functions here are pure: no I/O, no clock, no store access.
package notice

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/m3rciful/hallbot/core/telegram/format"
	"github.com/m3rciful/hallbot/internal/questions"
)

// Callback actions carried by the inline buttons of a question notice.
const (
	ArmAction   = "ans"
	CloseAction = "close"
)

const (
	defaultPreviewRunes = 50
	ellipsis            = "..."
	placeholderName     = "—"
)

// Action is a labeled button bound to a callback token.
type Action struct {
	Label string
	Token string
}

// Notice is an outbound message body.
type Notice struct {
	Text     string
	Markdown bool
	Actions  []Action
}

// Token encodes a callback token such as "ans_42".
func Token(action string, userID int64) string {
	return action + "_" + strconv.FormatInt(userID, 10)
}

// ParseToken splits a token produced by Token.
func ParseToken(token string) (action string, userID int64, err error) {
	action, raw, ok := strings.Cut(strings.TrimSpace(token), "_")
	if !ok || action == "" {
		return "", 0, fmt.Errorf("notice: malformed token %q", token)
	}
	userID, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("notice: malformed token %q: %w", token, err)
	}
	return action, userID, nil
}

// Formatter holds the venue-specific parts of the texts.
type Formatter struct {
	VenueName    string
	PreviewRunes int
}

// New returns a Formatter; previewRunes <= 0 selects the default of 50.
func New(venueName string, previewRunes int) Formatter {
	if previewRunes <= 0 {
		previewRunes = defaultPreviewRunes
	}
	return Formatter{VenueName: venueName, PreviewRunes: previewRunes}
}

// Handle renders the asker's handle, falling back to the numeric id.
func Handle(userID int64, handle string) string {
	if h := strings.TrimSpace(handle); h != "" {
		return h
	}
	return "ID" + strconv.FormatInt(userID, 10)
}

// DisplayName renders the asker's name or a dash.
func DisplayName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return placeholderName
}

// QuestionNotice is what the administrator receives for a new question.
func (f Formatter) QuestionNotice(userID int64, question, handle, displayName string) Notice {
	text := fmt.Sprintf("📩 Новый вопрос!\n👤 %s (%s)\n🆔 %d\n\n%s",
		Handle(userID, handle), DisplayName(displayName), userID, question)
	return Notice{
		Text: text,
		Actions: []Action{
			{Label: "💬 Ответить", Token: Token(ArmAction, userID)},
			{Label: "❌ Закрыть", Token: Token(CloseAction, userID)},
		},
	}
}

// AnswerNotice wraps the administrator's reply for the asker. The reply is
// escaped so that stray Markdown characters cannot make Telegram reject it.
func (f Formatter) AnswerNotice(answer string) Notice {
	escaped, _ := format.EscapeMarkdown(answer, format.MarkdownV1)
	return Notice{
		Text:     fmt.Sprintf("📬 *Ответ от поддержки %s:*\n\n%s", f.VenueName, escaped),
		Markdown: true,
	}
}

// QuestionList renders up to limit pending records, oldest first.
func (f Formatter) QuestionList(records []questions.Record, limit int) Notice {
	if len(records) == 0 {
		return Notice{Text: "✅ Нет неотвеченных вопросов!"}
	}
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	var b strings.Builder
	b.WriteString("📋 *Неотвеченные вопросы:*\n\n")
	for _, r := range records[:limit] {
		created := "N/A"
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "🆔 %d (%s)\n❓ %s\n📅 %s\n\n",
			r.UserID,
			escape(Handle(r.UserID, r.Handle)),
			escape(f.preview(r.Question)),
			created,
		)
	}
	if rest := len(records) - limit; rest > 0 {
		fmt.Fprintf(&b, "... и еще %d вопросов", rest)
	}
	return Notice{Text: strings.TrimRight(b.String(), "\n"), Markdown: true}
}

// Stats renders the store counters.
func (f Formatter) Stats(st questions.Stats) Notice {
	return Notice{
		Text: fmt.Sprintf("📊 *Статистика вопросов:*\n\n📝 Всего вопросов: %d\n⏳ Ожидают ответа: %d\n✅ Отвечено: %d",
			st.Total, st.Pending, st.Answered),
		Markdown: true,
	}
}

func (f Formatter) preview(text string) string {
	limit := f.PreviewRunes
	if limit <= 0 {
		limit = defaultPreviewRunes
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + ellipsis
}

func escape(s string) string {
	out, _ := format.EscapeMarkdown(s, format.MarkdownV1)
	return out
}
