package service

import "errors"

// 服务层通用错误，handler 层据此映射响应码
var (
	ErrNotFound            = errors.New("record not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrMalformedRecord     = errors.New("malformed cart record")
	ErrCartLoadFailed      = errors.New("cart load failed")
	ErrCartMutationFailed  = errors.New("cart mutation failed")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
	ErrWeakPassword        = errors.New("password too weak")
	ErrCheckoutUnavailable = errors.New("checkout not configured")
)
