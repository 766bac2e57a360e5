package dto

// 校验规则统一由领域层validator负责(见domain/book/validation.go)
// 这里的DTO只做JSON类型绑定,类型不匹配返回40901,规则不满足返回40900

// CreateBookRequest HTTP上架请求
type CreateBookRequest struct {
	Name     string  `json:"name" example:"The Midnight Library"`
	Author   string  `json:"author" example:"Matt Haig"`
	Quantity int     `json:"quantity" example:"12"` // 1-100
	Price    float64 `json:"price" example:"14.99"`
}

// UpdateBookRequest HTTP部分更新请求
// 指针字段:未出现在请求体中的字段保持原值
type UpdateBookRequest struct {
	Name     *string  `json:"name,omitempty" example:"The Night Circus"`
	Author   *string  `json:"author,omitempty" example:"Erin Morgenstern"`
	Quantity *int     `json:"quantity,omitempty" example:"8"`
	Price    *float64 `json:"price,omitempty" example:"12.5"`
}

// PurchaseRequest HTTP购买请求
type PurchaseRequest struct {
	Quantity int `json:"quantity" example:"2"` // 1-100
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Keyword string `form:"keyword" example:"Haig"`
}

// BookResponse HTTP图书详情响应
type BookResponse struct {
	ID       uint    `json:"id" example:"1"`
	Name     string  `json:"name" example:"The Midnight Library"`
	Author   string  `json:"author" example:"Matt Haig"`
	Quantity int     `json:"quantity" example:"12"`
	Price    float64 `json:"price" example:"14.99"`
}

// BookListItem HTTP图书列表项,只包含id/name/author
type BookListItem struct {
	ID     uint   `json:"id" example:"1"`
	Name   string `json:"name" example:"The Midnight Library"`
	Author string `json:"author" example:"Matt Haig"`
}

// Receipt 购买凭证,取自扣减前的记录
type Receipt struct {
	Title    string  `json:"title" example:"The Midnight Library"`
	Author   string  `json:"author" example:"Matt Haig"`
	Price    float64 `json:"price" example:"14.99"`
	Quantity int     `json:"quantity" example:"2"`
}

// PurchaseResponse HTTP购买响应
type PurchaseResponse struct {
	Message string  `json:"message" example:"Book Successfully Purchased"`
	Receipt Receipt `json:"receipt"`
}

