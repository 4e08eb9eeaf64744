package dto

// 回调动作标识，前缀型动作后跟目标 ID
const (
	ActionMenuChars       = "menu_chars"
	ActionMenuCheckpoints = "menu_checkpoints"
	ActionMenuPremium     = "menu_premium"
	ActionSelectCharPfx   = "select_char_"
	ActionRestorePfx      = "restore_"
)

// BotUser 入站事件携带的用户信息
type BotUser struct {
	ID        string `json:"id" binding:"required"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// BotMessage 文本消息
type BotMessage struct {
	Text string `json:"text"`
}

// BotCallback 按钮交互
type BotCallback struct {
	Token  string `json:"token"`
	Action string `json:"action" binding:"required"`
}

// BotUpdate 网关转发的入站会话事件，message 和 callback 二选一
type BotUpdate struct {
	User     BotUser      `json:"user" binding:"required"`
	Message  *BotMessage  `json:"message,omitempty"`
	Callback *BotCallback `json:"callback,omitempty"`
}
