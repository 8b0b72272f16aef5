package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := []struct {
		in      string
		version int
		want    string
	}{
		{"plain text", MarkdownV1, "plain text"},
		{"snake_case *bold* `code` [link]", MarkdownV1, `snake\_case \*bold\* \` + "`" + `code\` + "`" + ` \[link]`},
		{"1.5 + 2 = 3.5!", MarkdownV2, `1\.5 \+ 2 \= 3\.5\!`},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, tc.version)
		if err != nil {
			t.Fatalf("EscapeMarkdown(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("EscapeMarkdown(%q, %d) = %q, want %q", tc.in, tc.version, got, tc.want)
		}
	}
	if _, err := EscapeMarkdown("x", 3); err == nil {
		t.Fatal("expected error for unknown version")
	}
}
