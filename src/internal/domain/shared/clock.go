package shared

import "time"

// Clock 時間來源
//
// token 有效期以牆上時間（毫秒）判斷，所有依賴「現在」的流程都透過 Clock 取得時間，
// 測試可注入固定或可推進的時鐘。
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系統時間（UTC）
type SystemClock struct{}

// Now 實現 Clock 介面
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc 讓普通函數滿足 Clock 介面
type ClockFunc func() time.Time

// Now 實現 Clock 介面
func (f ClockFunc) Now() time.Time {
	return f()
}
