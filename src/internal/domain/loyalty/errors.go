package loyalty

import "errors"

var (
	// ErrInvalidLevel 無法辨識的等級字串
	ErrInvalidLevel = errors.New("loyalty: invalid level")

	// ErrInvalidThreshold 門檻為負數
	ErrInvalidThreshold = errors.New("loyalty: threshold cannot be negative")
)
