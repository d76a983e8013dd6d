package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 分类：
//   - MISSING_TABLE / INVALID_INPUT：配置形态错误，评分开始前即返回给调用方
//   - NOT_FOUND：按 ID 查询不存在的合作社等
//   - UNAVAILABLE：存储后端不可用
//
// 数据质量缺口（未映射的产品名、缺失坐标、缺失产量记录）不会产生 DomainError，
// 而是在本地按“缺省 / 零贡献”处理。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "MISSING_TABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "ratings", "query"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 按 Module+Code 比较，便于 errors.Is 与哨兵错误配合。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// GetDomainError 沿错误链获取 DomainError，不存在时返回 nil。
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeMissingTable  = "MISSING_TABLE"  // 必需的输入表缺失或为空
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"
	ModuleCatalog = "catalog"
	ModuleRatings = "ratings"
	ModuleQuery   = "query"
	ModuleDataset = "dataset"
	ModuleFilter  = "filter"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsMissingTable 检查错误是否为 MISSING_TABLE
func IsMissingTable(err error) bool { return hasCode(err, ErrorCodeMissingTable) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsConfigurationError 检查错误是否属于配置形态错误（表缺失或输入无效）。
func IsConfigurationError(err error) bool {
	return IsMissingTable(err) || IsInvalidInput(err)
}
