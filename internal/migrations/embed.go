// 文件路径: internal/migrations/embed.go
// 模块说明: 内嵌的 sqlite 与 postgres 迁移脚本。
package migrations

import "embed"

// Files embeds the per-dialect migration directories.
//
//go:embed sqlite/*.sql postgres/*.sql
var Files embed.FS
