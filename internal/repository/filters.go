// 文件路径: internal/repository/filters.go
// 模块说明: 用户、账号列表查询的过滤条件。
package repository

// UserFilter narrows user listings for the admin panel.
type UserFilter struct {
	// Approved filters by approval flag when set.
	Approved *bool
	// ExcludeRoles hides users holding any of these roles.
	ExcludeRoles []Role
}

// AccountFilter scopes account record queries to one owner.
type AccountFilter struct {
	UserID   string
	FolderID string
	Geo      *string
	IDs      []string
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID string
}
