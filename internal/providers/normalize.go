package providers

import (
	"regexp"
	"strings"
)

// Текстовая нормализация сырых строк провайдеров.
// Все функции тотальны: «мусорный» вход даёт пустую строку, не ошибку.

var (
	// Обрезанный хвост вида "[+123 chars]" у усечённых описаний.
	reTruncated = regexp.MustCompile(`(?i)\s*\[\+\d+\schars\]\s*$`)
	// HTML-теги (описания часто приходят с разметкой).
	reTags = regexp.MustCompile(`</?[^>]+>`)
	// Последовательности пробельных символов.
	reSpaces = regexp.MustCompile(`\s+`)
)

// Clean убирает маркеры усечения и HTML-теги, схлопывает пробелы и обрезает края.
func Clean(value string) string {
	v := reTruncated.ReplaceAllString(value, "")
	v = reTags.ReplaceAllString(v, " ")
	v = reSpaces.ReplaceAllString(v, " ")

	return strings.TrimSpace(v)
}

// NormalizeText — Clean + lower-case, форма для сравнения.
func NormalizeText(value string) string {
	return strings.ToLower(Clean(value))
}

// NormalizeImageURL приводит URL картинки к абсолютному HTTPS.
// Пустой вход -> "". Протокол-относительные (//host/...) получают https:,
// http:// переписывается на https://, остальное — как есть.
func NormalizeImageURL(value string) string {
	v := Clean(value)
	if v == "" {
		return ""
	}

	if strings.HasPrefix(v, "//") {
		return "https:" + v
	}

	if strings.HasPrefix(v, "http://") {
		return "https://" + strings.TrimPrefix(v, "http://")
	}

	return v
}

// SafeDate усечённая ISO-дата YYYY-MM-DD из таймстампа источника, "-" при отсутствии.
func SafeDate(value string) string {
	v := Clean(value)
	if len(v) > 10 {
		v = v[:10]
	}

	if v == "" {
		return "-"
	}

	return v
}

// DigitStamp — только цифры таймстампа; используется как штамп в ID статьи.
func DigitStamp(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
