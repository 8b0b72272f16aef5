package keyboard

import "testing"

func TestColumn(t *testing.T) {
	m := Column("📅 Расписание", "🎫 Купить билеты", "📞 Поддержка")
	if !m.ResizeKeyboard || len(m.ReplyKeyboard) != 3 {
		t.Fatalf("unexpected markup %+v", m)
	}
	if m.ReplyKeyboard[2][0].Text != "📞 Поддержка" {
		t.Fatalf("row 3 = %+v", m.ReplyKeyboard[2])
	}
}

func TestInlineColumnKeepsRawData(t *testing.T) {
	if InlineColumn() != nil {
		t.Fatal("empty inline keyboard should be nil")
	}
	m := InlineColumn(InlineBtn{Text: "💬 Ответить", Data: "ans_42"}, InlineBtn{Text: "❌ Закрыть", Data: "close_42"})
	if len(m.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d", len(m.InlineKeyboard))
	}
	if b := m.InlineKeyboard[0][0]; b.Data != "ans_42" || b.Unique != "" {
		t.Fatalf("button = %+v", b)
	}
}
