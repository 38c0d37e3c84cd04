package render

import (
	"strings"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// Built-in dialect names.
const (
	DialectTelegramHTML = "telegram-html"
	DialectMarkdown     = "markdown"
	DialectPlain        = "plain"
)

// Dialect converts a Formatting choice into concrete markup for a target
// channel and cleans untrusted values before they are wrapped.
type Dialect interface {
	Name() string
	Wrap(text string, formatting model.Formatting) string
	Sanitize(value string) string
}

type telegramHTML struct{}

// TelegramHTML returns the dialect used by the publishing bot: Telegram's
// HTML parse mode.
func TelegramHTML() Dialect { return telegramHTML{} }

func (telegramHTML) Name() string { return DialectTelegramHTML }

func (telegramHTML) Wrap(text string, formatting model.Formatting) string {
	if text == "" {
		return text
	}
	switch formatting {
	case model.FormattingBold:
		return "<b>" + text + "</b>"
	case model.FormattingItalic:
		return "<i>" + text + "</i>"
	case model.FormattingCode:
		return "<code>" + text + "</code>"
	case model.FormattingSpoiler:
		return "<tg-spoiler>" + text + "</tg-spoiler>"
	case model.FormattingStrikethrough:
		return "<s>" + text + "</s>"
	case model.FormattingUnderline:
		return "<u>" + text + "</u>"
	case model.FormattingQuote:
		return "<blockquote>" + text + "</blockquote>"
	default:
		return text
	}
}

func (telegramHTML) Sanitize(value string) string {
	return sanitizeTelegramHTML(value)
}

type markdown struct{}

// Markdown returns a dialect emitting Telegram MarkdownV2 style markers.
func Markdown() Dialect { return markdown{} }

func (markdown) Name() string { return DialectMarkdown }

func (markdown) Wrap(text string, formatting model.Formatting) string {
	if text == "" {
		return text
	}
	switch formatting {
	case model.FormattingBold:
		return "*" + text + "*"
	case model.FormattingItalic:
		return "_" + text + "_"
	case model.FormattingCode:
		return "`" + text + "`"
	case model.FormattingSpoiler:
		return "||" + text + "||"
	case model.FormattingStrikethrough:
		return "~" + text + "~"
	case model.FormattingUnderline:
		return "__" + text + "__"
	case model.FormattingQuote:
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = ">" + line
		}
		return strings.Join(lines, "\n")
	default:
		return text
	}
}

func (markdown) Sanitize(value string) string {
	return stripMarkup(value)
}

type plain struct{}

// Plain returns a dialect that ignores formatting.
func Plain() Dialect { return plain{} }

func (plain) Name() string { return DialectPlain }

func (plain) Wrap(text string, _ model.Formatting) string { return text }

func (plain) Sanitize(value string) string {
	return stripMarkup(value)
}
