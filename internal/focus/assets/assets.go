package assets

import _ "embed" // 에셋 임베드용

// FocusMessagesYAML 는 집중 봇 메시지 YAML이다.
//
//go:embed messages/focus-messages.yml
var FocusMessagesYAML string

// LeaseAcquireLua 는 스캐너 임대 획득/연장 Lua 스크립트다.
//
//go:embed lua/lease_acquire.lua
var LeaseAcquireLua string

// LeaseReleaseLua 는 소유자일 때만 임대를 지우는 Lua 스크립트다.
//
//go:embed lua/lease_release.lua
var LeaseReleaseLua string
