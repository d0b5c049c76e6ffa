package persistence

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"gorm.io/gorm"
)

// ===========================
// GORM TransactionContext 實作
// ===========================

// gormTransactionContext GORM 事務上下文
//
// 實作 shared.TransactionContext（標記介面），封裝 *gorm.DB，
// GetDB() 不在介面中，Domain Layer 無法接觸 GORM。
type gormTransactionContext struct {
	db *gorm.DB
}

// NewGORMTransactionContext 創建 GORM 事務上下文
func NewGORMTransactionContext(db *gorm.DB) shared.TransactionContext {
	return &gormTransactionContext{db: db}
}

// GetDB 獲取 GORM DB 連接（僅供 Infrastructure Layer 內部使用）
func (ctx *gormTransactionContext) GetDB() *gorm.DB {
	return ctx.db
}

// DBProvider 任何能提供 *gorm.DB 的事務上下文
type DBProvider interface {
	shared.TransactionContext
	GetDB() *gorm.DB
}

// ResolveDB 可選事務參與
//
// ctx 是 GORM 事務上下文時返回事務中的 DB；攜帶請求 context 時返回綁定該 context 的 fallback；
// 否則（包含 nil）返回 fallback（auto-commit 模式）。
func ResolveDB(ctx shared.TransactionContext, fallback *gorm.DB) *gorm.DB {
	switch c := ctx.(type) {
	case DBProvider:
		return c.GetDB()
	case shared.ContextCarrier:
		if requestCtx := c.Context(); requestCtx != nil {
			return fallback.WithContext(requestCtx)
		}
	}
	return fallback
}
