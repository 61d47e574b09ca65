package constants

// 商品排序方式常量
const (
	SortOptionRecent    = "recent"
	SortOptionPriceAsc  = "price_asc"
	SortOptionPriceDesc = "price_desc"
)

// 分类筛选常量
const (
	CategoryAll = "all"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskCheckoutDispatched = "checkout:dispatched"
)

// 游客购物车常量
const (
	GuestCartKeyPrefix = "guest_cart"
	DeviceIDHeader     = "X-Device-ID"
	DeviceIDMaxLength  = 64
)
