package shared

import "context"

// TransactionContext 事務上下文介面
//
// 行為約定（可選事務參與）：
// - 事務上下文：在調用者的事務中執行
// - AutoCommit(ctx)：auto-commit，查詢綁定請求 context（取消或逾時即中止）
// - nil：auto-commit，不綁定任何 context
//
// 報到流程中只有「佔用 token + 新增來店紀錄」需要同一事務；
// 其後的顧客更新、等級重算、推薦獎勵都是獨立提交，失敗不回滾來店紀錄。
//
// 這是標記介面，由 Infrastructure Layer 實作（GORM）。
type TransactionContext interface {
	// 標記介面：僅用於傳遞上下文，不暴露方法
}

// TransactionManager 事務管理器介面
//
// 事務內的所有語句綁定 ctx。
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(tx TransactionContext) error) error
}

// ContextCarrier 攜帶請求 context 的事務上下文
type ContextCarrier interface {
	TransactionContext
	Context() context.Context
}

// AutoCommit 不參與事務、但綁定請求 context 的上下文
func AutoCommit(ctx context.Context) TransactionContext {
	return autoCommit{ctx: ctx}
}

type autoCommit struct {
	ctx context.Context
}

func (a autoCommit) Context() context.Context { return a.ctx }
