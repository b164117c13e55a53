package mq

import (
	"regexp"
	"strings"

	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/common/parser"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/config"
	"github.com/park285/llm-kakao-bots/focus-bot-go/internal/focus/messages"
)

// CommandParser: 접두사 뒤의 한글/영문 명령을 Command 로 바꾼다.
type CommandParser struct {
	parser.BaseParser

	helpRe        *regexp.Regexp
	joinRe        *regexp.Regexp
	leaveRe       *regexp.Regexp
	statusRe      *regexp.Regexp
	statsRe       *regexp.Regexp
	leaderboardRe *regexp.Regexp
	maintenanceRe *regexp.Regexp
	configRe      *regexp.Regexp
	resetRe       *regexp.Regexp
}

// NewCommandParser: prefix 가 비어있으면 기본 접두사(/집중)를 쓴다.
func NewCommandParser(prefix string) *CommandParser {
	p := &CommandParser{BaseParser: parser.NewBaseParser(prefix, config.DefaultCommandPrefix)}

	p.helpRe = p.BuildPattern(`\s*(?:help|도움말)?$`)
	p.joinRe = p.BuildPattern(`\s*(?:참가|시작|join|start)(?:\s+(\S+))?$`)
	p.leaveRe = p.BuildPattern(`\s*(?:종료|끝|leave|stop)$`)
	p.statusRe = p.BuildPattern(`\s*(?:상태|status)$`)
	p.statsRe = p.BuildPattern(`\s*(?:전적|기록|me|stats)$`)
	p.leaderboardRe = p.BuildPattern(`\s*(?:랭킹|순위|top|leaderboard)(?:\s+(\S+))?$`)
	p.maintenanceRe = p.BuildPattern(`\s*(?:점검|maintenance)(?:\s+(\S+))?$`)
	p.configRe = p.BuildPattern(`\s*(?:설정|config)(?:\s+(\S+))?(?:\s+(.+))?$`)
	p.resetRe = p.BuildPattern(`\s*(?:초기화|reset)$`)

	return p
}

// Parse: 접두사로 시작하지 않으면 nil. 알 수 없는 명령은 CommandUnknown.
func (p *CommandParser) Parse(message string) *Command {
	text := p.TrimMessage(message)
	if text == "" {
		return nil
	}

	switch {
	case p.helpRe.MatchString(text):
		return &Command{Kind: CommandHelp}
	case p.leaveRe.MatchString(text):
		return &Command{Kind: CommandLeave}
	case p.statusRe.MatchString(text):
		return &Command{Kind: CommandStatus}
	case p.statsRe.MatchString(text):
		return &Command{Kind: CommandUserStats}
	case p.resetRe.MatchString(text):
		return &Command{Kind: CommandReset}
	}
	if m := p.joinRe.FindStringSubmatch(text); m != nil {
		return &Command{Kind: CommandJoin, Mode: strings.TrimSpace(m[1]), Usage: messages.JoinUsage}
	}
	if m := p.leaderboardRe.FindStringSubmatch(text); m != nil {
		return &Command{Kind: CommandLeaderboard, Metric: strings.ToLower(strings.TrimSpace(m[1]))}
	}
	if m := p.maintenanceRe.FindStringSubmatch(text); m != nil {
		return parseMaintenance(m[1])
	}
	if m := p.configRe.FindStringSubmatch(text); m != nil {
		return parseConfig(m[1], m[2])
	}
	return &Command{Kind: CommandUnknown}
}

func parseMaintenance(arg string) *Command {
	cmd := &Command{Kind: CommandMaintenance, Usage: messages.MaintenanceUsage}
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "켜기", "시작", "on":
		cmd.Enable = true
	case "끄기", "해제", "off":
		cmd.Enable = false
	default:
		// 인자가 없거나 모르면 사용법 안내
		cmd.Kind = CommandUnknown
	}
	return cmd
}

var configFieldAliases = map[string]ConfigField{
	"채널":      ConfigFieldChannel,
	"channel": ConfigFieldChannel,
	"역할a":     ConfigFieldRoleA,
	"role_a":  ConfigFieldRoleA,
	"역할b":     ConfigFieldRoleB,
	"role_b":  ConfigFieldRoleB,
}

func parseConfig(field, value string) *Command {
	cmd := &Command{Kind: CommandConfig, Usage: messages.ConfigUsage}
	f, ok := configFieldAliases[strings.ToLower(strings.TrimSpace(field))]
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		cmd.Kind = CommandUnknown
		return cmd
	}
	cmd.Field = f
	cmd.Value = value
	return cmd
}
