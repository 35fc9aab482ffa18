// 文件路径: internal/repository/types.go
// 模块说明: 领域实体：用户、文件夹、账号、商品与流水。
package repository

// Role is a user's access tier.
type Role string

const (
	RoleUser      Role = "User"
	RoleSuperUser Role = "Super User"
	RoleVIPUser   Role = "VIP User"
	RoleSupport   Role = "Support"
	RoleAdmin     Role = "Admin"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleSuperUser, RoleVIPUser, RoleSupport, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Temporary 表示该角色带有效期（到期后回落为 User）。
func (r Role) Temporary() bool {
	return r == RoleSuperUser || r == RoleVIPUser
}

// Staff 表示可访问管理接口的角色。
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleSupport
}

// User mirrors the users table. Money is kept in cents, timestamps in unix seconds.
type User struct {
	ID            string
	Username      string
	Password      string
	Role          Role
	RoleExpiresAt *int64
	BalanceCents  int64
	Approved      bool
	Blocked       bool
	Language      string
	CreatedAt     int64
	UpdatedAt     int64
}

// Folder groups account records of one owner.
type Folder struct {
	ID            string
	UserID        string
	Name          string
	CooldownHours int
	CreatedAt     int64
}

// AccountRecord is one uploaded credential line.
type AccountRecord struct {
	ID              string
	UserID          string
	FolderID        string
	UploadedAt      int64
	RawData         string
	FormatType      int
	Email           string
	EmailPassword   string
	Login           string
	AccountPassword string
	Geo             *string
	Data1           string
	Data2           string
}

// Category groups shop products.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   int64
}

// ProductType distinguishes depletable line pools from flat goods.
type ProductType string

const (
	ProductTypeAccounts ProductType = "accounts"
	ProductTypeOther    ProductType = "other"
)

// Product is a sellable shop entry.
type Product struct {
	ID                string
	CategoryID        string
	Title             string
	Description       string
	PriceCents        int64
	Type              ProductType
	Content           string
	Unique            bool
	OriginalQuantity  int64
	AvailableQuantity int64
	SoldQuantity      int64
	CreatedAt         int64
	UpdatedAt         int64
}

// Purchase is the immutable receipt of one sale.
type Purchase struct {
	ID             string
	UserID         string
	ProductID      string
	ProductTitle   string
	Quantity       int64
	UnitPriceCents int64
	TotalCents     int64
	Content        string
	MinAgeHours    *int64
	CreatedAt      int64
}

// UserLogType tags audit log entries.
type UserLogType string

const (
	UserLogRolePurchase    UserLogType = "role_purchase"
	UserLogAdminBalanceAdd UserLogType = "admin_balance_add"
	UserLogAdminBalanceSet UserLogType = "admin_balance_set"
	UserLogAdminRoleSet    UserLogType = "admin_role_set"
)

// UserLog is an append-only audit entry for balance and role operations.
type UserLog struct {
	ID          string
	ActorID     string
	TargetID    string
	Type        UserLogType
	AmountCents int64
	Description string
	CreatedAt   int64
}

// Setting 表示 settings 表中的一条配置。
type Setting struct {
	Key       string
	Value     string
	Category  string
	UpdatedAt int64
}

// PurchaseSummary aggregates sales for one product within a window.
type PurchaseSummary struct {
	ProductID    string
	ProductTitle string
	Purchases    int64
	Units        int64
	RevenueCents int64
}

// RoleCount is the number of users holding a role.
type RoleCount struct {
	Role  Role
	Count int64
}
