package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "max" or "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"path_not_found":     "path not found",
		"type_mismatch":      "type mismatch",
		"index_out_of_range": "index out of range",
		"integer_overflow":   "value does not fit in {bits} bits (min {min}, max {max})",
		"string_too_long":    "string longer than {max} bytes",
		"non_finite_float":   "non-finite float not allowed",
		"length_mismatch":    "element count does not match declared size {max}",
		"precision_loss":     "value cannot be represented without loss",
		"duplicate_key":      "duplicate key",
		"parse_error":        "parse error",
		"truncated":          "truncated",
		"schema_overlap":     "field overlaps another field",
		"schema_misaligned":  "offset not aligned to element width",
		"schema_invalid":     "invalid field declaration",
		"schema_conflict":    "field path conflicts with another field",
	},
	"ja": {
		"path_not_found":     "パスが見つかりません",
		"type_mismatch":      "型が不正です",
		"index_out_of_range": "インデックスが範囲外です",
		"integer_overflow":   "{bits}ビットに収まりません (最小 {min}, 最大 {max})",
		"string_too_long":    "文字列が{max}バイトを超えています",
		"non_finite_float":   "有限でない浮動小数点数は許可されていません",
		"length_mismatch":    "要素数が宣言サイズ{max}と一致しません",
		"precision_loss":     "精度を失わずに表現できません",
		"duplicate_key":      "キーが重複しています",
		"parse_error":        "解析エラー",
		"truncated":          "打ち切られました",
		"schema_overlap":     "フィールドが重なっています",
		"schema_misaligned":  "オフセットが要素幅に揃っていません",
		"schema_invalid":     "フィールド宣言が不正です",
		"schema_conflict":    "フィールドパスが競合しています",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
