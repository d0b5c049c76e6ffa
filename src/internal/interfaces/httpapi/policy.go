package httpapi

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed rbac_model.conf
var rbacModel string

// 員工角色
const (
	RoleStaff   = "staff"
	RoleManager = "manager"
	RoleOwner   = "owner"
)

// 受保護的資源與動作
const (
	ObjectVisitToken = "visit_token"
	ObjectDiscount   = "discount"
	ObjectCustomer   = "customer"

	ActionIssue    = "issue"
	ActionView     = "view"
	ActionClaim    = "claim"
	ActionRegister = "register"
)

// NewEnforcer 建立員工角色權限判斷器
//
// 權限：staff 可建立顧客、簽發與查詢報到碼；manager 另可兌換折扣；owner 繼承 manager。
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	policies := [][]string{
		{subject(RoleStaff), ObjectVisitToken, ActionIssue},
		{subject(RoleStaff), ObjectVisitToken, ActionView},
		{subject(RoleStaff), ObjectCustomer, ActionRegister},
		{subject(RoleManager), ObjectDiscount, ActionClaim},
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("seed policies: %w", err)
	}

	inheritance := [][]string{
		{subject(RoleManager), subject(RoleStaff)},
		{subject(RoleOwner), subject(RoleManager)},
	}
	if _, err := enforcer.AddGroupingPolicies(inheritance); err != nil {
		return nil, fmt.Errorf("seed role links: %w", err)
	}
	return enforcer, nil
}

func subject(role string) string {
	return "role:" + role
}
