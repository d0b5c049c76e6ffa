package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// ===========================
// IssueVisitToken Use Case
// ===========================

// IssueConfig 簽發設定
type IssueConfig struct {
	// BaseURL 顧客端網址（兌換連結為 {BaseURL}/checkin?token=...）
	BaseURL string
	// TokenTTL 有效期，<= 0 時為 60 秒
	TokenTTL time.Duration
}

// IssueVisitTokenCommand 簽發報到碼的命令
//
// 輸入：
// - SalonID / IssuerID: 來自員工登入憑證
// - CustomerID: 要報到的顧客
// - Services: 本次服務項目（僅供兌換頁顯示，可為空）
type IssueVisitTokenCommand struct {
	SalonID    string
	CustomerID string
	IssuerID   string
	Services   []string
}

// IssueVisitTokenResult 簽發結果
type IssueVisitTokenResult struct {
	TokenID       string
	Token         string
	RedemptionURL string
	ExpiresAt     time.Time
}

// IssueVisitTokenUseCase 簽發報到碼
//
// 職責：
// 1. 確認顧客屬於員工所在沙龍
// 2. 建立 60 秒有效的一次性報到碼
// 3. 組出兌換網址
// 4. 保存報到碼（used_at 為 null）
type IssueVisitTokenUseCase struct {
	tokenRepo    checkin.VisitTokenRepository
	customerRepo customer.CustomerRepository
	clock        shared.Clock
	metrics      Metrics
	log          *zap.Logger
	cfg          IssueConfig
}

// NewIssueVisitTokenUseCase 創建 Use Case 實例
func NewIssueVisitTokenUseCase(
	tokenRepo checkin.VisitTokenRepository,
	customerRepo customer.CustomerRepository,
	clock shared.Clock,
	metrics Metrics,
	log *zap.Logger,
	cfg IssueConfig,
) *IssueVisitTokenUseCase {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &IssueVisitTokenUseCase{
		tokenRepo:    tokenRepo,
		customerRepo: customerRepo,
		clock:        clock,
		metrics:      metrics,
		log:          log.Named("issue_visit_token"),
		cfg:          cfg,
	}
}

// Execute 執行簽發
//
// 錯誤處理：
// - ID 格式錯誤：customer.ErrInvalid*ID（store 不會被存取）
// - 顧客不在該沙龍：checkin.ErrCustomerNotFound
// - 任何 store 失敗：checkin.ErrUnexpected，details 帶底層錯誤
func (uc *IssueVisitTokenUseCase) Execute(ctx context.Context, cmd IssueVisitTokenCommand) (*IssueVisitTokenResult, error) {
	log := logging.WithContext(ctx, uc.log)

	// 1. 驗證並轉換 ID
	salonID, err := customer.SalonIDFromString(cmd.SalonID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse salon ID: %w", err)
	}
	customerID, err := customer.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}
	issuerID, err := customer.StaffIDFromString(cmd.IssuerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issuer ID: %w", err)
	}

	// 2. 租戶範圍檢查
	if _, err := uc.customerRepo.FindByIDInSalon(shared.AutoCommit(ctx), salonID, customerID); err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound) {
			return nil, checkin.ErrCustomerNotFound.WithContext("customer_id", customerID.String())
		}
		log.Error("customer lookup failed", zap.String("customer_id", customerID.String()), zap.Error(err))
		return nil, checkin.ErrUnexpected.WithContext("details", err.Error())
	}

	// 3. 建立報到碼
	now := uc.clock.Now()
	token, err := checkin.NewVisitToken(salonID, customerID, issuerID, now, uc.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create visit token: %w", err)
	}

	redemptionURL, err := checkin.BuildRedemptionURL(uc.cfg.BaseURL, token.Token(), checkin.NewServiceList(cmd.Services))
	if err != nil {
		log.Error("redemption url misconfigured", zap.String("base_url", uc.cfg.BaseURL), zap.Error(err))
		return nil, checkin.ErrUnexpected.WithContext("details", err.Error())
	}

	// 4. 保存（auto-commit 單筆寫入）
	if err := uc.tokenRepo.Save(shared.AutoCommit(ctx), token); err != nil {
		log.Error("visit token insert failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return nil, checkin.ErrUnexpected.WithContext("details", err.Error())
	}

	uc.metrics.TokenIssued()
	log.Info("visit token issued",
		zap.String("token_id", token.TokenID().String()),
		zap.String("customer_id", customerID.String()),
		zap.Time("expires_at", token.ExpiresAt()),
	)

	return &IssueVisitTokenResult{
		TokenID:       token.TokenID().String(),
		Token:         token.Token().String(),
		RedemptionURL: redemptionURL,
		ExpiresAt:     token.ExpiresAt(),
	}, nil
}
