package client

import (
	"encoding/json"
	"fmt"
)

// Action 消息类型判别字段（出入站共用同一个 "action" 键）
type Action string

const (
	ActionJoinGame     Action = "join_game"
	ActionMove         Action = "move"
	ActionStop         Action = "stop"
	ActionPlayersMoved Action = "players_moved"
	ActionPlayerJoined Action = "player_joined"
	ActionPlayerLeft   Action = "player_left"
)

// Intent 出站意图（只表达“想做什么”，位置结果由服务端决定）
type Intent interface {
	Action() Action
}

// JoinGame 加入请求
// 示例：{"action":"join_game","username":"Summer"}
type JoinGame struct {
	Username string
}

// Move 移动意图，示例：{"action":"move","direction":"up"}
type Move struct {
	Direction Facing
}

// Stop 停止意图，示例：{"action":"stop"}
type Stop struct{}

func (JoinGame) Action() Action { return ActionJoinGame }
func (Move) Action() Action { return ActionMove }
func (Stop) Action() Action { return ActionStop }

type joinGameMessage struct {
	Action   Action `json:"action"`
	Username string `json:"username"`
}

type moveMessage struct {
	Action    Action `json:"action"`
	Direction Facing `json:"direction"`
}

type stopMessage struct {
	Action Action `json:"action"`
}

// EncodeIntent 将意图编码为 JSON 文本帧
func EncodeIntent(in Intent) ([]byte, error) {
	switch v := in.(type) {
	case JoinGame:
		if v.Username == "" {
			return nil, fmt.Errorf("encode %s: empty username", ActionJoinGame)
		}
		return json.Marshal(joinGameMessage{Action: ActionJoinGame, Username: v.Username})
	case Move:
		if !v.Direction.Valid() {
			return nil, fmt.Errorf("encode %s: invalid direction %q", ActionMove, v.Direction)
		}
		return json.Marshal(moveMessage{Action: ActionMove, Direction: v.Direction})
	case Stop:
		return json.Marshal(stopMessage{Action: ActionStop})
	default:
		return nil, fmt.Errorf("encode: unsupported intent %T", in)
	}
}

// Event 入站事件（服务端推送）
type Event interface {
	Action() Action
}

// JoinResult 加入结果；Success 为 false 时只有 Error 有意义
type JoinResult struct {
	Success  bool
	PlayerID PlayerID
	Players  map[PlayerID]Player
	Avatars  map[AvatarID]Avatar
	Error    string
}

// PlayersMoved 批量位置更新（部分玩家的完整记录）
type PlayersMoved struct {
	Players map[PlayerID]Player
}

// PlayerJoined 单个玩家加入，附带其外观定义（以 player.avatarId 为键）
type PlayerJoined struct {
	Player Player
	Avatar Avatar
}

type PlayerLeft struct {
	PlayerID PlayerID
}

// UnknownEvent 未识别的 action，调用方直接忽略
type UnknownEvent struct {
	Name Action
}

func (JoinResult) Action() Action { return ActionJoinGame }
func (PlayersMoved) Action() Action { return ActionPlayersMoved }
func (PlayerJoined) Action() Action { return ActionPlayerJoined }
func (PlayerLeft) Action() Action { return ActionPlayerLeft }
func (e UnknownEvent) Action() Action { return e.Name }

type envelope struct {
	Action Action `json:"action"`
}

type joinResultMessage struct {
	Success  *bool               `json:"success"`
	PlayerID PlayerID            `json:"playerId"`
	Players  map[PlayerID]Player `json:"players"`
	Avatars  map[AvatarID]Avatar `json:"avatars"`
	Error    string              `json:"error"`
}

type playersMovedMessage struct {
	Players map[PlayerID]Player `json:"players"`
}

type playerJoinedMessage struct {
	Player *Player `json:"player"`
	Avatar *Avatar `json:"avatar"`
}

type playerLeftMessage struct {
	PlayerID PlayerID `json:"playerId"`
}

// DecodeEvent 解析并校验一条入站消息。
// 返回错误时不产生任何事件，调用方丢弃整条消息即可，状态不会被部分修改。
func DecodeEvent(b []byte) (Event, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformedEvent)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	switch env.Action {
	case "":
		return nil, fmt.Errorf("%w: missing action", ErrMalformedEvent)
	case ActionJoinGame:
		return decodeJoinResult(b)
	case ActionPlayersMoved:
		return decodePlayersMoved(b)
	case ActionPlayerJoined:
		return decodePlayerJoined(b)
	case ActionPlayerLeft:
		return decodePlayerLeft(b)
	default:
		return UnknownEvent{Name: env.Action}, nil
	}
}

func decodeAs[T any](b []byte, action Action) (T, error) {
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", ErrMalformedEvent, action, err)
	}
	return out, nil
}

func decodeJoinResult(b []byte) (Event, error) {
	m, err := decodeAs[joinResultMessage](b, ActionJoinGame)
	if err != nil {
		return nil, err
	}
	if m.Success == nil {
		return nil, fmt.Errorf("%w: %s without success", ErrMalformedEvent, ActionJoinGame)
	}
	if !*m.Success {
		return JoinResult{Success: false, Error: m.Error}, nil
	}
	if m.PlayerID == "" {
		return nil, fmt.Errorf("%w: %s without playerId", ErrMalformedEvent, ActionJoinGame)
	}
	if m.Players == nil || m.Avatars == nil {
		return nil, fmt.Errorf("%w: %s without players or avatars", ErrMalformedEvent, ActionJoinGame)
	}
	players, err := validatePlayers(m.Players)
	if err != nil {
		return nil, err
	}
	for id, a := range m.Avatars {
		if err := a.validate(id); err != nil {
			return nil, err
		}
	}
	return JoinResult{
		Success:  true,
		PlayerID: m.PlayerID,
		Players:  players,
		Avatars:  m.Avatars,
	}, nil
}

func decodePlayersMoved(b []byte) (Event, error) {
	m, err := decodeAs[playersMovedMessage](b, ActionPlayersMoved)
	if err != nil {
		return nil, err
	}
	if m.Players == nil {
		return nil, fmt.Errorf("%w: %s without players", ErrMalformedEvent, ActionPlayersMoved)
	}
	players, err := validatePlayers(m.Players)
	if err != nil {
		return nil, err
	}
	return PlayersMoved{Players: players}, nil
}

func decodePlayerJoined(b []byte) (Event, error) {
	m, err := decodeAs[playerJoinedMessage](b, ActionPlayerJoined)
	if err != nil {
		return nil, err
	}
	if m.Player == nil || m.Avatar == nil {
		return nil, fmt.Errorf("%w: %s without player or avatar", ErrMalformedEvent, ActionPlayerJoined)
	}
	p := *m.Player
	if err := p.validate(""); err != nil {
		return nil, err
	}
	if err := m.Avatar.validate(p.AvatarID); err != nil {
		return nil, err
	}
	return PlayerJoined{Player: p, Avatar: *m.Avatar}, nil
}

func decodePlayerLeft(b []byte) (Event, error) {
	m, err := decodeAs[playerLeftMessage](b, ActionPlayerLeft)
	if err != nil {
		return nil, err
	}
	if m.PlayerID == "" {
		return nil, fmt.Errorf("%w: %s without playerId", ErrMalformedEvent, ActionPlayerLeft)
	}
	return PlayerLeft{PlayerID: m.PlayerID}, nil
}

func validatePlayers(in map[PlayerID]Player) (map[PlayerID]Player, error) {
	out := make(map[PlayerID]Player, len(in))
	for id, p := range in {
		if err := p.validate(id); err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}
