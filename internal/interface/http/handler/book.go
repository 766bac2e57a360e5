package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookstore-inventory/internal/application/book"
	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-inventory/pkg/errors"
	"github.com/xiebiao/bookstore-inventory/pkg/response"
)

// BookHandler 图书HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 业务规则校验在domain层，Handler只处理JSON绑定失败
// 3. 应用层DTO → HTTP DTO 在这里转换
type BookHandler struct {
	listBooks    *appbook.ListBooksUseCase
	getBook      *appbook.GetBookUseCase
	createBook   *appbook.CreateBookUseCase
	updateBook   *appbook.UpdateBookUseCase
	deleteBook   *appbook.DeleteBookUseCase
	purchaseBook *appbook.PurchaseBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	createBook *appbook.CreateBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	purchaseBook *appbook.PurchaseBookUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:    listBooks,
		getBook:      getBook,
		createBook:   createBook,
		updateBook:   updateBook,
		deleteBook:   deleteBook,
		purchaseBook: purchaseBook,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  返回全部库存图书(id/name/author),按id升序
// @Tags         图书
// @Produce      json
// @Param        keyword query string false "按书名或作者模糊匹配"
// @Success      200 {object} response.Response{data=[]dto.BookListItem}
// @Failure      500 {object} response.Response "系统内部错误"
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{Keyword: req.Keyword})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.BookListItem, len(list))
	for i, it := range list {
		items[i] = dto.BookListItem{ID: it.ID, Name: it.Name, Author: it.Author}
	}
	response.Success(c, items)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "ID非法"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookDTO(result))
}

// CreateBook 上架图书
// @Summary      上架图书
// @Description  name必填(≤60),author 3-30字符,quantity 1-100,price非负
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Name:     req.Name,
		Author:   req.Author,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toBookDTO(result))
}

// PurchaseBook 购买图书
// @Summary      购买图书
// @Description  扣减库存,购买剩余全部库存时图书记录被删除
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id path int true "图书ID"
// @Param        request body dto.PurchaseRequest true "购买数量"
// @Success      200 {object} response.Response{data=dto.PurchaseResponse}
// @Failure      400 {object} response.Response "参数错误或库存不足"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) PurchaseBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.purchaseBook.Execute(c.Request.Context(), appbook.PurchaseBookRequest{
		ID:       id,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.PurchaseResponse{
		Message: result.Message,
		Receipt: dto.Receipt{
			Title:    result.Receipt.Title,
			Author:   result.Receipt.Author,
			Price:    result.Receipt.Price,
			Quantity: result.Receipt.Quantity,
		},
	})
}

// UpdateBook 部分更新图书
// @Summary      更新图书
// @Description  只修改请求体中出现的字段,至少提供一个字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "待更新字段"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:       id,
		Name:     req.Name,
		Author:   req.Author,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookDTO(result))
}

// DeleteBook 下架图书
// @Summary      下架图书
// @Description  删除图书并返回被删除的记录
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "ID非法"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	result, err := h.deleteBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookDTO(result))
}

// bookID 解析路径参数id,非正整数直接返回400
func bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		response.Error(c, book.ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}

func bindError(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
}

func toBookDTO(b *appbook.BookResponse) *dto.BookResponse {
	return &dto.BookResponse{
		ID:       b.ID,
		Name:     b.Name,
		Author:   b.Author,
		Quantity: b.Quantity,
		Price:    b.Price,
	}
}
