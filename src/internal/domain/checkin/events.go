package checkin

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
)

// VisitRecordedEvent 來店紀錄建立事件
//
// 事件在 Visit 寫入成功後才發布；發布失敗不影響報到結果。
type VisitRecordedEvent struct {
	eventID    string
	visitID    VisitID
	tokenID    VisitTokenID
	salonID    customer.SalonID
	customerID customer.CustomerID
	services   ServiceList
	occurredAt time.Time
}

// NewVisitRecordedEvent 創建來店紀錄事件
func NewVisitRecordedEvent(visit *Visit, tokenID VisitTokenID) *VisitRecordedEvent {
	return &VisitRecordedEvent{
		eventID:    uuid.New().String(),
		visitID:    visit.VisitID(),
		tokenID:    tokenID,
		salonID:    visit.SalonID(),
		customerID: visit.CustomerID(),
		services:   visit.Services(),
		occurredAt: visit.VisitedAt(),
	}
}

func (e *VisitRecordedEvent) EventID() string       { return e.eventID }
func (e *VisitRecordedEvent) EventType() string     { return "checkin.visit_recorded" }
func (e *VisitRecordedEvent) OccurredAt() time.Time { return e.occurredAt }
func (e *VisitRecordedEvent) AggregateID() string   { return e.visitID.String() }

func (e *VisitRecordedEvent) TokenID() VisitTokenID           { return e.tokenID }
func (e *VisitRecordedEvent) SalonID() customer.SalonID       { return e.salonID }
func (e *VisitRecordedEvent) CustomerID() customer.CustomerID { return e.customerID }
func (e *VisitRecordedEvent) Services() ServiceList           { return e.services }
