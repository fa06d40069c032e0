package violation

import "strings"

// Supported message languages.
const (
	LangEn = "en"
	LangVi = "vi"
)

type message struct {
	key      string
	negative string
	text     map[string]string
	negText  map[string]string
}

var catalog = map[Kind]message{
	ValidFormat: {
		key:      "ValidFormat",
		negative: "InvalidFormat",
		text:     map[string]string{LangEn: "is valid format", LangVi: "đúng định dạng"},
		negText:  map[string]string{LangEn: "is invalid format", LangVi: "không đúng định dạng"},
	},
	Redundant: {
		key:     "Redundant",
		text:    map[string]string{LangEn: "is redundant", LangVi: "dư thừa"},
		negText: map[string]string{LangEn: "is not redundant", LangVi: "không dư thừa"},
	},
	Existence: {
		key:     "Existence",
		text:    map[string]string{LangEn: "exists", LangVi: "tồn tại"},
		negText: map[string]string{LangEn: "does not exist", LangVi: "không tồn tại"},
	},
}

var subjects = map[string]map[string]string{
	LangEn: {
		Subject:     "query param",
		FieldFilter: "filter",
		FieldSort:   "sort",
		FieldSearch: "search",
		FieldCursor: "cursor",
		FieldLimit:  "limit",
	},
	LangVi: {
		Subject:     "tham số truy vấn",
		FieldFilter: "bộ lọc",
		FieldSort:   "sắp xếp",
		FieldSearch: "tìm kiếm",
		FieldCursor: "con trỏ",
		FieldLimit:  "giới hạn",
	},
}

// Language picks the supported language best matching an Accept-Language header.
func Language(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		base, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if _, ok := subjects[base]; ok {
			return base
		}
	}
	return LangEn
}

// Message renders a human readable sentence in lang (English when unsupported).
func (v Violation) Message(lang string) string {
	words, ok := subjects[lang]
	if !ok {
		lang = LangEn
		words = subjects[lang]
	}
	m := catalog[v.Kind]
	text := m.text[lang]
	if v.Negative {
		text = m.negText[lang]
	}

	field := words[v.Field]
	if field == "" {
		field = strings.ToLower(v.Field)
	}
	of := "of"
	if lang == LangVi {
		of = "của"
	}

	parts := make([]string, 0, 4)
	if field != "" {
		parts = append(parts, field, of)
	}
	parts = append(parts, words[Subject], text)
	return strings.Join(parts, " ")
}
