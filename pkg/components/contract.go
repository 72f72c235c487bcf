package components

import "fmt"

// ContractViolation 调用方违反前置条件时的 panic 值
//
// 这类错误属于编程错误，核心代码从不 recover。
type ContractViolation struct {
	Op     string // 违反约定的操作，如 "WeaponComponent.ReloadAmmo"
	Detail string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s: %s", c.Op, c.Detail)
}

func violate(op, format string, args ...interface{}) {
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
