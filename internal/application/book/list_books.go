package book

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/pkg/tracing"
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 列表只返回id/name/author,详情通过GetBook获取
// 2. 结果按id升序,不分页(库存规模有限)
// 3. 列表不走缓存,避免写操作时批量失效
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Keyword string // 按书名或作者模糊匹配,为空时返回全部
}

// BookListItem 列表项DTO
type BookListItem struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

// Execute 执行列表查询用例
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) ([]BookListItem, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ListBooks")
	defer span.End()

	keyword := strings.TrimSpace(req.Keyword)
	span.SetAttributes(attribute.String("book.keyword", keyword))

	books, err := uc.bookService.ListBooks(ctx, book.ListFilter{Keyword: keyword})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 空结果返回[]而不是null
	list := make([]BookListItem, len(books))
	for i, b := range books {
		s := b.Summary()
		list[i] = BookListItem{ID: s.ID, Name: s.Name, Author: s.Author}
	}
	return list, nil
}
