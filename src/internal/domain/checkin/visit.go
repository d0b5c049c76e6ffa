package checkin

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// Visit 實體
// ===========================

// Visit 一次確認的來店紀錄
//
// 每次報到一筆，建立後不再修改；同一天多次來店各自計算。
// 來店總次數一律由 Visit 筆數重新計算，不維護計數欄位。
type Visit struct {
	visitID    VisitID
	salonID    customer.SalonID
	customerID customer.CustomerID
	issuerID   customer.StaffID
	visitedAt  time.Time
	services   ServiceList

	events []shared.DomainEvent
}

// NewVisitFromToken 依報到碼建立來店紀錄
func NewVisitFromToken(token *VisitToken, services ServiceList, visitedAt time.Time) *Visit {
	v := &Visit{
		visitID:    NewVisitID(),
		salonID:    token.SalonID(),
		customerID: token.CustomerID(),
		issuerID:   token.IssuerID(),
		visitedAt:  visitedAt,
		services:   services,
		events:     make([]shared.DomainEvent, 0),
	}
	v.events = append(v.events, NewVisitRecordedEvent(v, token.TokenID()))
	return v
}

// ReconstructVisit 從持久化存儲重建
func ReconstructVisit(
	visitID VisitID,
	salonID customer.SalonID,
	customerID customer.CustomerID,
	issuerID customer.StaffID,
	visitedAt time.Time,
	services ServiceList,
) *Visit {
	return &Visit{
		visitID:    visitID,
		salonID:    salonID,
		customerID: customerID,
		issuerID:   issuerID,
		visitedAt:  visitedAt,
		services:   services,
		events:     make([]shared.DomainEvent, 0),
	}
}

func (v *Visit) VisitID() VisitID                { return v.visitID }
func (v *Visit) SalonID() customer.SalonID       { return v.salonID }
func (v *Visit) CustomerID() customer.CustomerID { return v.customerID }
func (v *Visit) IssuerID() customer.StaffID      { return v.issuerID }
func (v *Visit) VisitedAt() time.Time            { return v.visitedAt }
func (v *Visit) Services() ServiceList           { return v.services }

// PullEvents 獲取所有待發布事件並清空列表
func (v *Visit) PullEvents() []shared.DomainEvent {
	events := v.events
	v.events = make([]shared.DomainEvent, 0)
	return events
}

// ===========================
// ReferralReward 實體
// ===========================

// ReferralReward 推薦獎勵紀錄
//
// 只在被推薦者首次來店（來店數 == 1）時建立；沒有唯一約束。
type ReferralReward struct {
	rewardID   ReferralRewardID
	salonID    customer.SalonID
	referrerID customer.CustomerID
	referredID customer.CustomerID
	createdAt  time.Time
}

// NewReferralReward 建立推薦獎勵紀錄
func NewReferralReward(salonID customer.SalonID, referrerID, referredID customer.CustomerID, at time.Time) *ReferralReward {
	return &ReferralReward{
		rewardID:   NewReferralRewardID(),
		salonID:    salonID,
		referrerID: referrerID,
		referredID: referredID,
		createdAt:  at,
	}
}

// ReconstructReferralReward 從持久化存儲重建
func ReconstructReferralReward(
	rewardID ReferralRewardID,
	salonID customer.SalonID,
	referrerID, referredID customer.CustomerID,
	createdAt time.Time,
) *ReferralReward {
	return &ReferralReward{
		rewardID:   rewardID,
		salonID:    salonID,
		referrerID: referrerID,
		referredID: referredID,
		createdAt:  createdAt,
	}
}

func (r *ReferralReward) RewardID() ReferralRewardID      { return r.rewardID }
func (r *ReferralReward) SalonID() customer.SalonID       { return r.salonID }
func (r *ReferralReward) ReferrerID() customer.CustomerID { return r.referrerID }
func (r *ReferralReward) ReferredID() customer.CustomerID { return r.referredID }
func (r *ReferralReward) CreatedAt() time.Time            { return r.createdAt }
