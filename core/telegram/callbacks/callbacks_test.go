package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseData(t *testing.T) {
	cases := []struct {
		data, key, payload string
	}{
		{"ans_42", "ans", "42"},
		{"close_-100", "close", "-100"},
		{"\fmenu|stats", "menu", "stats"},
		{"\fping", "ping", ""},
		{"noseparator", "noseparator", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		key, payload := ParseData(tc.data)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("ParseData(%q) = (%q, %q), want (%q, %q)", tc.data, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParsePrefersUnique(t *testing.T) {
	key, payload := Parse(&tele.Callback{Unique: "menu", Data: "stats"})
	if key != "menu" || payload != "stats" {
		t.Fatalf("Parse = (%q, %q)", key, payload)
	}
	if key, payload := Parse(nil); key != "" || payload != "" {
		t.Fatalf("Parse(nil) = (%q, %q)", key, payload)
	}
}
