package repository

import "errors"

var (
	// 対象が存在しない
	ErrNotFound = errors.New("not found")

	// 一意制約違反
	ErrConflict = errors.New("conflict")

	// 数値が列の桁に収まらない
	ErrOutOfRange = errors.New("value out of range")
)
