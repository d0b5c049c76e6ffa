package checkin

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型定義
// ===========================

// VisitTokenMarker 是 VisitTokenID 的標記類型
type VisitTokenMarker struct{}

// VisitTokenID 報到碼紀錄的唯一標識符（與 token 值無關）
type VisitTokenID = shared.EntityID[VisitTokenMarker]

// NewVisitTokenID 生成新的報到碼紀錄 ID
func NewVisitTokenID() VisitTokenID {
	return shared.NewEntityID[VisitTokenMarker]()
}

// VisitTokenIDFromString 從字串解析報到碼紀錄 ID
func VisitTokenIDFromString(s string) (VisitTokenID, error) {
	return shared.EntityIDFromString[VisitTokenMarker](s, ErrInvalidTokenID)
}

// VisitMarker 是 VisitID 的標記類型
type VisitMarker struct{}

// VisitID 來店紀錄 ID
type VisitID = shared.EntityID[VisitMarker]

// NewVisitID 生成新的來店紀錄 ID
func NewVisitID() VisitID {
	return shared.NewEntityID[VisitMarker]()
}

// VisitIDFromString 從字串解析來店紀錄 ID
func VisitIDFromString(s string) (VisitID, error) {
	return shared.EntityIDFromString[VisitMarker](s, ErrInvalidVisitID)
}

// ReferralRewardMarker 是 ReferralRewardID 的標記類型
type ReferralRewardMarker struct{}

// ReferralRewardID 推薦獎勵紀錄 ID
type ReferralRewardID = shared.EntityID[ReferralRewardMarker]

// NewReferralRewardID 生成新的推薦獎勵紀錄 ID
func NewReferralRewardID() ReferralRewardID {
	return shared.NewEntityID[ReferralRewardMarker]()
}

// ReferralRewardIDFromString 從字串解析推薦獎勵紀錄 ID
func ReferralRewardIDFromString(s string) (ReferralRewardID, error) {
	return shared.EntityIDFromString[ReferralRewardMarker](s, ErrRepositoryError)
}

// ===========================
// TokenValue 值對象
// ===========================

// TokenValue 報到碼的不透明隨機字串
//
// 由 UUID v4 去掉連字號得到 32 個小寫十六進位字元（122 bits 隨機）。
type TokenValue struct {
	value string
}

// GenerateTokenValue 生成新的隨機報到碼
func GenerateTokenValue() TokenValue {
	return TokenValue{value: strings.ReplaceAll(uuid.NewString(), "-", "")}
}

// TokenValueFrom 包裝外部傳入的報到碼（不驗證格式，查詢時以精確值比對）
func TokenValueFrom(s string) TokenValue {
	return TokenValue{value: s}
}

// String 返回原始字串
func (t TokenValue) String() string { return t.value }

// IsEmpty 判斷是否為空
func (t TokenValue) IsEmpty() bool { return t.value == "" }
