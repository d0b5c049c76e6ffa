package loyalty

import "fmt"

// 系統預設門檻（沙龍未設定時使用）
const (
	DefaultSilverMinVisits   = 10
	DefaultGoldMinVisits     = 20
	DefaultPlatinumMinVisits = 30
	DefaultVIPMinVisits      = 40
)

// Thresholds 等級門檻值對象（來店次數下限）
//
// BRONZE 是隱含的下限（0 次），不需要設定。
type Thresholds struct {
	silver   int
	gold     int
	platinum int
	vip      int
}

// DefaultThresholds 返回系統預設門檻 10/20/30/40
func DefaultThresholds() Thresholds {
	return Thresholds{
		silver:   DefaultSilverMinVisits,
		gold:     DefaultGoldMinVisits,
		platinum: DefaultPlatinumMinVisits,
		vip:      DefaultVIPMinVisits,
	}
}

// NewThresholds 由沙龍設定建立門檻
//
// 0 表示「未設定」，套用該等級的系統預設值；負數視為資料錯誤。
func NewThresholds(silver, gold, platinum, vip int) (Thresholds, error) {
	values := map[string]int{
		"silver":   silver,
		"gold":     gold,
		"platinum": platinum,
		"vip":      vip,
	}
	for name, v := range values {
		if v < 0 {
			return Thresholds{}, fmt.Errorf("%w: %s=%d", ErrInvalidThreshold, name, v)
		}
	}

	return Thresholds{
		silver:   orDefault(silver, DefaultSilverMinVisits),
		gold:     orDefault(gold, DefaultGoldMinVisits),
		platinum: orDefault(platinum, DefaultPlatinumMinVisits),
		vip:      orDefault(vip, DefaultVIPMinVisits),
	}, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// SilverMinVisits 返回 SILVER 門檻
func (t Thresholds) SilverMinVisits() int { return t.silver }

// GoldMinVisits 返回 GOLD 門檻
func (t Thresholds) GoldMinVisits() int { return t.gold }

// PlatinumMinVisits 返回 PLATINUM 門檻
func (t Thresholds) PlatinumMinVisits() int { return t.platinum }

// VIPMinVisits 返回 VIP 門檻
func (t Thresholds) VIPMinVisits() int { return t.vip }

// ResolveLevel 依來店總次數計算等級（純函數）
//
// 由高到低比對，第一個達標的等級勝出；因此結果對 visits 單調不減。
func (t Thresholds) ResolveLevel(visits int) Level {
	switch {
	case visits >= t.vip:
		return LevelVIP
	case visits >= t.platinum:
		return LevelPlatinum
	case visits >= t.gold:
		return LevelGold
	case visits >= t.silver:
		return LevelSilver
	default:
		return LevelBronze
	}
}
