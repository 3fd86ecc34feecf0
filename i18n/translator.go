package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "path" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"unrecognized_kind": "unrecognized value kind",
		"expected_key":      "expected a plain string key",
		"dangling_key":      "key {key} has no value",
		"truncated":         "stream ended early",
		"unsupported_value": "value rejected by the writer",
		"invalid_payload":   "payload does not fit its kind",
		"duplicate_key":     "duplicate key {key}",
		"too_deep":          "nesting too deep",
		"unbalanced":        "close without matching open",
	},
	"ja": {
		"unrecognized_kind": "未知の値種別です",
		"expected_key":      "キーは文字列である必要があります",
		"dangling_key":      "キー {key} に値がありません",
		"truncated":         "ストリームが途中で終わりました",
		"unsupported_value": "書き込み先が値を拒否しました",
		"invalid_payload":   "ペイロードが種別に合いません",
		"duplicate_key":     "キー {key} が重複しています",
		"too_deep":          "ネストが深すぎます",
		"unbalanced":        "対応する開き括弧がありません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
