package notice

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/hallbot/internal/questions"
)

func TestQuestionNotice(t *testing.T) {
	f := New("Usupovo Life Hall", 0)
	n := f.QuestionNotice(42, "When is the next show?", "@anna", "")
	want := "📩 Новый вопрос!\n👤 @anna (—)\n🆔 42\n\nWhen is the next show?"
	if n.Text != want {
		t.Fatalf("text = %q, want %q", n.Text, want)
	}
	if n.Markdown {
		t.Fatal("question notice must be plain text")
	}
	if len(n.Actions) != 2 || n.Actions[0].Token != "ans_42" || n.Actions[1].Token != "close_42" {
		t.Fatalf("actions = %+v", n.Actions)
	}

	n = f.QuestionNotice(7, "q", "", "Ivan Petrov")
	if !strings.Contains(n.Text, "👤 ID7 (Ivan Petrov)") {
		t.Fatalf("fallback handle missing: %q", n.Text)
	}
}

func TestAnswerNotice(t *testing.T) {
	f := New("Usupovo Life Hall", 0)
	n := f.AnswerNotice("Next show is Friday 8pm")
	if !n.Markdown {
		t.Fatal("answer notice is Markdown")
	}
	if !strings.HasPrefix(n.Text, "📬 *Ответ от поддержки Usupovo Life Hall:*\n\n") {
		t.Fatalf("missing preamble: %q", n.Text)
	}
	if !strings.HasSuffix(n.Text, "Friday 8pm") {
		t.Fatalf("missing answer: %q", n.Text)
	}
	if got := f.AnswerNotice("use promo_code *NOW*").Text; !strings.HasSuffix(got, `use promo\_code \*NOW\*`) {
		t.Fatalf("answer not escaped: %q", got)
	}
}

func TestQuestionList(t *testing.T) {
	f := New("Hall", 5)
	if n := f.QuestionList(nil, 10); n.Text != "✅ Нет неотвеченных вопросов!" {
		t.Fatalf("empty list = %q", n.Text)
	}

	at := time.Date(2026, 3, 8, 19, 0, 0, 0, time.UTC)
	records := []questions.Record{
		{UserID: 1, Question: "short", Handle: "@a_b", CreatedAt: at},
		{UserID: 2, Question: "длинный вопрос"},
		{UserID: 3, Question: "third"},
	}
	n := f.QuestionList(records, 2)
	if !n.Markdown {
		t.Fatal("list is Markdown")
	}
	for _, want := range []string{
		"🆔 1 (@a\\_b)\n❓ short\n📅 2026-03-08 19:00",
		"🆔 2 (ID2)\n❓ длинн...\n📅 N/A",
		"... и еще 1 вопросов",
	} {
		if !strings.Contains(n.Text, want) {
			t.Fatalf("expected %q in\n%s", want, n.Text)
		}
	}
	if strings.Contains(n.Text, "third") {
		t.Fatalf("limit not applied:\n%s", n.Text)
	}
	if full := f.QuestionList(records, 0); strings.Contains(full.Text, "и еще") {
		t.Fatalf("limit 0 lists everything:\n%s", full.Text)
	}
}

func TestStats(t *testing.T) {
	n := New("Hall", 0).Stats(questions.Stats{Total: 5, Pending: 3, Answered: 2})
	for _, want := range []string{"Всего вопросов: 5", "Ожидают ответа: 3", "Отвечено: 2"} {
		if !strings.Contains(n.Text, want) {
			t.Fatalf("expected %q in %q", want, n.Text)
		}
	}
}

func TestTokens(t *testing.T) {
	action, id, err := ParseToken(Token(CloseAction, 2107059658))
	if err != nil || action != CloseAction || id != 2107059658 {
		t.Fatalf("round trip = %q %d %v", action, id, err)
	}
	for _, bad := range []string{"", "ans", "ans_", "_42", "ans_x"} {
		if _, _, err := ParseToken(bad); err == nil {
			t.Fatalf("ParseToken(%q) should fail", bad)
		}
	}
}

func TestRelayTexts(t *testing.T) {
	if got := Armed(42, "q", nil).Text; got != "✏️ Введите ответ для пользователя (ID: 42):\n\nВопрос: q" {
		t.Fatalf("armed = %q", got)
	}
	if got := Armed(42, "q", []int64{7, 9}).Text; !strings.HasSuffix(got, "7, 9") {
		t.Fatalf("armed with released = %q", got)
	}
	if got := DeliveryFailed(errors.New("bot was blocked by the user")).Text; got != "❌ Ошибка отправки: bot was blocked by the user" {
		t.Fatalf("delivery failed = %q", got)
	}
	if got := Delivered(42).Text; got != "✅ Ответ отправлен пользователю (ID: 42)!" {
		t.Fatalf("delivered = %q", got)
	}
}
