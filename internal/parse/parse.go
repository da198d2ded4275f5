// File: internal/parse/parse.go

// Package parse turns raw chat text into dispatchable commands and cleans
// user-supplied identifiers before they reach any upstream adapter.
package parse

import (
	"strings"

	"telegram-deploy-bot/internal/domain/model"
)

// Tokenize splits raw chat text into a command token and arguments.
// The command marker is a single leading "/"; the token is lowercased and any
// trailing "@botname" is stripped. A double- or single-quoted first argument
// is kept as one argument so multi-word names survive. ok is false when the
// text does not start with the command marker.
func Tokenize(raw string) (cmd model.ParsedCommand, ok bool) {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "/") {
		return model.ParsedCommand{}, false
	}
	text = text[1:]
	if text == "" {
		return model.ParsedCommand{}, false
	}

	token := text
	rest := ""
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		token, rest = text[:i], strings.TrimSpace(text[i+1:])
	}
	if at := strings.Index(token, "@"); at >= 0 {
		token = token[:at]
	}
	token = strings.ToLower(token)
	if token == "" {
		return model.ParsedCommand{}, false
	}

	return model.ParsedCommand{Token: token, Args: splitArgs(rest)}, true
}

// splitArgs splits on whitespace, honoring one leading quoted argument.
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	if q := s[0]; q == '"' || q == '\'' {
		if end := strings.IndexByte(s[1:], q); end >= 0 {
			first := s[1 : 1+end]
			rest := strings.Fields(s[2+end:])
			return append([]string{first}, rest...)
		}
		// No closing quote: fall through and treat the quote as literal text.
	}
	return strings.Fields(s)
}
