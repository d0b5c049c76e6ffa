package loyalty

import "fmt"

// ===========================
// Level 忠誠度等級
// ===========================

// Level 忠誠度等級（全序：BRONZE < SILVER < GOLD < PLATINUM < VIP）
type Level string

const (
	LevelBronze   Level = "BRONZE"
	LevelSilver   Level = "SILVER"
	LevelGold     Level = "GOLD"
	LevelPlatinum Level = "PLATINUM"
	LevelVIP      Level = "VIP"
)

// rank 等級排序值，用於比較
var rank = map[Level]int{
	LevelBronze:   0,
	LevelSilver:   1,
	LevelGold:     2,
	LevelPlatinum: 3,
	LevelVIP:      4,
}

// ParseLevel 從資料庫字串解析等級
//
// 空字串視為 BRONZE（新註冊顧客的欄位預設值）。
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelBronze, nil
	}
	level := Level(s)
	if _, ok := rank[level]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}

// String 返回等級字串
func (l Level) String() string {
	return string(l)
}

// Rank 返回排序值（BRONZE = 0）
func (l Level) Rank() int {
	return rank[l]
}

// IsHigherThan 判斷是否高於另一等級
func (l Level) IsHigherThan(other Level) bool {
	return l.Rank() > other.Rank()
}
