// 文件路径: internal/repository/errors.go
// 模块说明: 仓储层哨兵错误。
package repository

import "errors"

var (
	// ErrNotFound 表示查询未返回数据。
	ErrNotFound = errors.New("not found / 未找到数据")
	// ErrDuplicate 表示违反唯一约束。
	ErrDuplicate = errors.New("duplicate / 数据已存在")
	// ErrStale 表示条件更新未命中（并发修改或前置条件不满足）。
	ErrStale = errors.New("stale write / 数据已被修改")
)
