package dto

// QuotaInfo 用户配额信息
type QuotaInfo struct {
	IsPremium bool   `json:"is_premium"`
	MsgUsed   int    `json:"msg_used"`
	MsgLimit  int    `json:"msg_limit"`
	ImgUsed   int    `json:"img_used"`
	ImgLimit  int    `json:"img_limit"`
	ResetAt   string `json:"reset_at"`
}
