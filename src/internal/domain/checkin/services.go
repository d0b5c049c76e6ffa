package checkin

import (
	"encoding/json"
	"net/url"
	"strings"
)

// ServiceList 本次來店的服務項目（有序的自由文字標籤，僅供顯示）
type ServiceList []string

// NewServiceList 去除空白標籤後建立；結果為空時返回 nil
func NewServiceList(labels []string) ServiceList {
	var list ServiceList
	for _, l := range labels {
		if l == "" {
			continue
		}
		list = append(list, l)
	}
	return list
}

// ParseServicesParam 解析以字串形式提交的 services
//
// 先視為 percent-encoded JSON 陣列；解碼或解析失敗時退回為只含原始字串的單元素清單。
// 空字串返回 nil。
func ParseServicesParam(raw string) ServiceList {
	if raw == "" {
		return nil
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return ServiceList{raw}
	}

	var labels []string
	if err := json.Unmarshal([]byte(decoded), &labels); err != nil {
		return ServiceList{raw}
	}
	return NewServiceList(labels)
}

// IsEmpty 判斷清單是否為空
func (s ServiceList) IsEmpty() bool {
	return len(s) == 0
}

// JSON 編碼為 JSON 陣列（空清單返回 nil，對應資料庫 NULL）
func (s ServiceList) JSON() ([]byte, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	return json.Marshal([]string(s))
}

// ServiceListFromJSON 從資料庫欄位還原；nil 或 "null" 返回 nil
func ServiceListFromJSON(data []byte) (ServiceList, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	return NewServiceList(labels), nil
}

// ===========================
// 兌換網址
// ===========================

// BuildRedemptionURL 組出報到網址
//
// 格式：{base}/checkin?token={token}&services={percent-encoded JSON}
// services 為空時省略該參數。
func BuildRedemptionURL(baseURL string, token TokenValue, services ServiceList) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("checkin")

	query := "token=" + url.QueryEscape(token.String())
	if !services.IsEmpty() {
		encoded, err := services.JSON()
		if err != nil {
			return "", err
		}
		query += "&services=" + percentEncode(string(encoded))
	}
	u.RawQuery = query
	return u.String(), nil
}

// percentEncode 與 encodeURIComponent 相同的編碼方式：空白為 %20 而非 +
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
