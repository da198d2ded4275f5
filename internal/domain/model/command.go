// File: internal/domain/model/command.go
package model

// IncomingCommand is one inbound chat update reduced to what the dispatcher
// needs. RawText is attacker-controlled and must be treated as untrusted.
type IncomingCommand struct {
	ConversationID int64
	CallerID       int64
	CallerName     string
	RawText        string
}

// ParsedCommand is the deterministic decomposition of IncomingCommand.RawText:
// the command token lowercased with any trailing "@botname" stripped, plus the
// ordered argument list.
type ParsedCommand struct {
	Token string
	Args  []string
}
