package checkin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
)

// DefaultQRCodeSize QR 圖片邊長（像素）
const DefaultQRCodeSize = 250

// QRCodeImageURL 組出外部 QR 圖片服務的網址
//
// 格式：{endpoint}?size=NxN&data={兌換網址}
func QRCodeImageURL(endpoint string, size int, redemptionURL string) string {
	if size <= 0 {
		size = DefaultQRCodeSize
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%ssize=%dx%d&data=%s", endpoint, sep, size, size, url.QueryEscape(redemptionURL))
}

var userMessages = map[checkin.ErrorCode]string{
	checkin.ErrCodeMissingToken:        "Geçersiz QR kod: token bulunamadı.",
	checkin.ErrCodeInvalidToken:        "Geçersiz veya tanınmayan QR kod.",
	checkin.ErrCodeTokenExpired:        "QR kodun süresi doldu. Lütfen personelden yeni bir kod isteyin.",
	checkin.ErrCodeTokenAlreadyUsed:    "Bu QR kod daha önce kullanıldı.",
	checkin.ErrCodeCustomerNotFound:    "Müşteri kaydı bulunamadı.",
	checkin.ErrCodeVisitCreationFailed: "Ziyaret kaydedilemedi. Lütfen tekrar deneyin.",
	checkin.ErrCodeUnexpected:          "Beklenmeyen bir hata oluştu.",
}

// UserMessage 錯誤代碼對應的顧客端訊息（土耳其文）
func UserMessage(code checkin.ErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[checkin.ErrCodeUnexpected]
}

// WelcomeMessage 兌換成功訊息
func WelcomeMessage(customerName string) string {
	return fmt.Sprintf("Hoş geldiniz, %s! Ziyaretiniz kaydedildi.", customerName)
}

// CanRegenerate 只有過期可以重新簽發
func CanRegenerate(code checkin.ErrorCode) bool {
	return code == checkin.ErrCodeTokenExpired
}
