package client

// Store 本地世界状态镜像：只由对账事件修改，渲染与输入只读。
// 单线程访问（会话逻辑线程），不加锁。
type Store struct {
	players map[PlayerID]Player
	order   []PlayerID // 插入顺序，即绘制顺序
	avatars map[AvatarID]Avatar

	selfID PlayerID
	joined bool
}

// NewStore 创建空的世界状态
func NewStore() *Store {
	return &Store{
		players: make(map[PlayerID]Player),
		avatars: make(map[AvatarID]Avatar),
	}
}

// ApplyJoin 加入成功后整体替换世界状态并设置本地身份。
// 每个连接只允许一次；重复调用返回 ErrAlreadyJoined 且不修改任何状态。
func (s *Store) ApplyJoin(selfID PlayerID, players map[PlayerID]Player, avatars map[AvatarID]Avatar) error {
	if s.joined {
		return ErrAlreadyJoined
	}
	s.players = make(map[PlayerID]Player, len(players))
	s.order = s.order[:0]
	for id, p := range players {
		s.players[id] = p
		s.order = append(s.order, id)
	}
	s.avatars = make(map[AvatarID]Avatar, len(avatars))
	for id, a := range avatars {
		s.avatars[id] = a
	}
	s.selfID = selfID
	s.joined = true
	return nil
}

// ApplyMove 逐个键整条覆盖（后写者胜），未出现的玩家保持不变，新键直接插入
func (s *Store) ApplyMove(players map[PlayerID]Player) {
	for id, p := range players {
		s.put(id, p)
	}
}

// ApplyPlayerJoined 插入/覆盖一个玩家及其外观定义
func (s *Store) ApplyPlayerJoined(p Player, a Avatar) {
	s.put(p.ID, p)
	s.avatars[p.AvatarID] = a
}

// ApplyPlayerLeft 移除玩家；不存在时为空操作，返回 false
func (s *Store) ApplyPlayerLeft(id PlayerID) bool {
	if _, ok := s.players[id]; !ok {
		return false
	}
	delete(s.players, id)
	for i, pid := range s.order {
		if pid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) put(id PlayerID, p Player) {
	if _, ok := s.players[id]; !ok {
		s.order = append(s.order, id)
	}
	s.players[id] = p
}

// SelfID 本地身份；加入前为空
func (s *Store) SelfID() (PlayerID, bool) {
	return s.selfID, s.joined
}

// Self 返回本地玩家记录（未加入或不在镜像中时 ok 为 false）
func (s *Store) Self() (Player, bool) {
	if !s.joined {
		return Player{}, false
	}
	p, ok := s.players[s.selfID]
	return p, ok
}

func (s *Store) Player(id PlayerID) (Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

func (s *Store) Avatar(id AvatarID) (Avatar, bool) {
	a, ok := s.avatars[id]
	return a, ok
}

// Avatars 遍历所有外观定义（顺序不保证）
func (s *Store) Avatars(fn func(AvatarID, Avatar)) {
	for id, a := range s.avatars {
		fn(id, a)
	}
}

// Each 按插入顺序遍历玩家
func (s *Store) Each(fn func(Player)) {
	for _, id := range s.order {
		fn(s.players[id])
	}
}

func (s *Store) Len() int { return len(s.players) }
