// Package decode turns raw export bytes into text.
//
// Brokerage exports arrive either as Shift_JIS or as UTF-8 with no hint
// attached. Shift_JIS is tried first; UTF-8 only wins when it produces
// strictly fewer replacement characters.
package decode

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported in a Result.
const (
	ShiftJIS = "Shift_JIS"
	UTF8     = "UTF-8"
)

const replacementChar = "�"

// Result is a decoded text together with how it was chosen.
type Result struct {
	Text     string
	Encoding string
	// Replacements is the number of U+FFFD in Text.
	Replacements int
	// Fallback is set when Shift_JIS decoding failed outright.
	Fallback bool
}

// Decode returns raw decoded with the most plausible encoding.
func Decode(raw []byte) string {
	return DecodeWithReport(raw).Text
}

// DecodeWithReport is Decode with the encoding decision attached.
func DecodeWithReport(raw []byte) Result {
	return decodeReport(japanese.ShiftJIS, raw)
}

// decodeReport tries primary (reported as Shift_JIS) before UTF-8. A
// transform error from primary switches to UTF-8 outright.
func decodeReport(primary encoding.Encoding, raw []byte) Result {
	sjis, err := decodeWith(primary, raw)
	if err != nil {
		text := decodeUTF8(raw)
		return Result{
			Text:         text,
			Encoding:     UTF8,
			Replacements: strings.Count(text, replacementChar),
			Fallback:     true,
		}
	}

	sjisBad := strings.Count(sjis, replacementChar)
	if sjisBad == 0 {
		return Result{Text: sjis, Encoding: ShiftJIS}
	}

	utf := decodeUTF8(raw)
	utfBad := strings.Count(utf, replacementChar)
	if utfBad < sjisBad {
		return Result{Text: utf, Encoding: UTF8, Replacements: utfBad}
	}
	return Result{Text: sjis, Encoding: ShiftJIS, Replacements: sjisBad}
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decodeUTF8 strips a leading BOM and replaces invalid sequences with U+FFFD.
func decodeUTF8(raw []byte) string {
	out, err := decodeWith(unicode.UTF8BOM, raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), replacementChar)
	}
	return out
}
