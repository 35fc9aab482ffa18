// 文件路径: internal/service/errors.go
// 模块说明: 业务错误：根错误决定 HTTP 状态，key 用于翻译。
package service

import "errors"

// Root classes. Every domain error unwraps to exactly one of them.
var (
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("service: validation failed / 参数校验失败")
	// ErrNotFound indicates requested resource does not exist (or belongs to someone else).
	ErrNotFound = errors.New("service: not found / 未找到资源")
	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("service: forbidden / 无权操作")
	// ErrConflict indicates the operation clashes with current state.
	ErrConflict = errors.New("service: conflict / 状态冲突")
	// ErrUnauthorized indicates missing or invalid auth tokens.
	ErrUnauthorized = errors.New("service: unauthorized / 未授权")
	// ErrInvalidCredentials indicates provided credentials are wrong.
	ErrInvalidCredentials = errors.New("service: invalid credentials / 凭证无效")
	// ErrRateLimited indicates caller exceeded allowed attempts.
	ErrRateLimited = errors.New("service: rate limited / 请求过于频繁")
)

// Error is a classified domain failure carrying a translation key.
type Error struct {
	root error
	key  string
	msg  string
}

func newError(root error, key, msg string) *Error {
	return &Error{root: root, key: key, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.root }

// Key returns the i18n key of the error.
func (e *Error) Key() string { return e.key }

var (
	ErrUsernameInvalid  = newError(ErrValidation, "auth.username_invalid", "service: invalid username / 用户名无效")
	ErrPasswordTooShort = newError(ErrValidation, "auth.password_too_short", "service: password too short / 密码过短")
	ErrPasswordTooLong  = newError(ErrValidation, "auth.password_too_long", "service: password too long / 密码过长")
	ErrUsernameExists   = newError(ErrConflict, "auth.username_taken", "service: username already exists / 用户名已存在")
	ErrAccountBlocked   = newError(ErrUnauthorized, "auth.account_blocked", "service: account blocked / 账号已封禁")
	ErrPendingApproval  = newError(ErrUnauthorized, "auth.pending_approval", "service: account pending approval / 账号待审核")
	ErrTokenInvalid     = newError(ErrUnauthorized, "auth.token_invalid", "service: invalid token / 令牌无效")
	ErrWrongPassword    = newError(ErrValidation, "auth.wrong_password", "service: current password mismatch / 当前密码错误")

	ErrUserNotFound        = newError(ErrNotFound, "user.not_found", "service: user not found / 用户不存在")
	ErrLanguageUnsupported = newError(ErrValidation, "user.language_unsupported", "service: unsupported language / 不支持的语言")

	ErrFolderNotFound      = newError(ErrNotFound, "folder.not_found", "service: folder not found / 文件夹不存在")
	ErrFolderNameRequired  = newError(ErrValidation, "folder.name_required", "service: folder name required / 文件夹名称不能为空")
	ErrFolderNameReserved  = newError(ErrConflict, "folder.name_reserved", "service: folder name reserved / 文件夹名称已保留")
	ErrMainFolderProtected = newError(ErrConflict, "folder.main_protected", "service: main folder cannot be deleted / 主文件夹不可删除")
	ErrCooldownNegative    = newError(ErrValidation, "folder.cooldown_negative", "service: cooldown must not be negative / 冷却时间不能为负")

	ErrEmptyUpload      = newError(ErrValidation, "account.empty_upload", "service: upload contains no lines / 上传内容为空")
	ErrCriterionInvalid = newError(ErrValidation, "account.criterion_invalid", "service: unknown selection criterion / 未知筛选条件")
	ErrIDsRequired      = newError(ErrValidation, "account.ids_required", "service: no ids given / 未选择账号")

	ErrUpgradeNotAllowed       = newError(ErrForbidden, "role.upgrade_not_allowed", "service: role upgrade not allowed / 不允许的角色升级")
	ErrVIPCapReached           = newError(ErrConflict, "role.vip_cap_reached", "service: vip cap reached / VIP 名额已满")
	ErrRoleInsufficientBalance = newError(ErrConflict, "role.insufficient_balance", "service: insufficient balance for upgrade / 余额不足以升级")

	ErrQuantityInvalid         = newError(ErrValidation, "shop.quantity_invalid", "service: quantity must be at least 1 / 数量至少为 1")
	ErrMinAgeInvalid           = newError(ErrValidation, "shop.min_age_invalid", "service: min age must not be negative / 账龄不能为负")
	ErrInsufficientStock       = newError(ErrConflict, "shop.insufficient_stock", "service: insufficient stock / 库存不足")
	ErrShopInsufficientBalance = newError(ErrConflict, "shop.insufficient_balance", "service: insufficient balance / 余额不足")
	ErrNotEnoughAged           = newError(ErrConflict, "shop.not_enough_aged", "service: not enough aged stock / 满足账龄的库存不足")
	ErrStockChanged            = newError(ErrConflict, "shop.stock_changed", "service: stock changed concurrently / 库存已变化")
	ErrProductNotFound         = newError(ErrNotFound, "shop.product_not_found", "service: product not found / 商品不存在")
	ErrCategoryNotFound        = newError(ErrNotFound, "shop.category_not_found", "service: category not found / 分类不存在")
	ErrPriceInvalid            = newError(ErrValidation, "shop.price_invalid", "service: price must not be negative / 价格不能为负")
	ErrTitleRequired           = newError(ErrValidation, "shop.title_required", "service: title required / 标题不能为空")
	ErrProductTypeInvalid      = newError(ErrValidation, "shop.type_invalid", "service: unknown product type / 未知商品类型")

	ErrActionInvalid   = newError(ErrValidation, "admin.action_invalid", "service: unknown admin action / 未知管理操作")
	ErrTargetProtected = newError(ErrForbidden, "admin.target_protected", "service: target user is protected / 无权修改该用户")
	ErrSelfAction      = newError(ErrForbidden, "admin.self_action", "service: action not allowed on self / 不能对自己执行该操作")
	ErrRoleInvalid     = newError(ErrValidation, "admin.role_invalid", "service: unknown role / 未知角色")
	ErrRoleForbidden   = newError(ErrForbidden, "admin.role_forbidden", "service: only admins grant staff roles / 仅管理员可授予该角色")
	ErrBalanceNegative = newError(ErrConflict, "admin.balance_negative", "service: balance must not be negative / 余额不能为负")
	ErrDaysInvalid     = newError(ErrValidation, "admin.days_invalid", "service: days must be given and not negative / 天数必填且不能为负")
	ErrNotPending      = newError(ErrConflict, "admin.not_pending", "service: user is not pending / 用户不在待审核状态")
)

var rootKeys = []struct {
	err error
	key string
}{
	{ErrValidation, "error.validation"},
	{ErrNotFound, "error.not_found"},
	{ErrForbidden, "error.forbidden"},
	{ErrConflict, "error.conflict"},
	{ErrInvalidCredentials, "error.invalid_credentials"},
	{ErrUnauthorized, "error.unauthorized"},
	{ErrRateLimited, "error.rate_limited"},
}

// ErrorKey returns the translation key for err; unclassified errors map to error.internal.
func ErrorKey(err error) string {
	var domain *Error
	if errors.As(err, &domain) {
		return domain.key
	}
	for _, rk := range rootKeys {
		if errors.Is(err, rk.err) {
			return rk.key
		}
	}
	return "error.internal"
}
