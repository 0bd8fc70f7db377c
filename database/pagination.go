package database

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const DefaultPageSize = 10

type Paginate struct {
	Page     int
	Limit    int
	NumItems int64
}

func (a *Paginate) SetNumItems(number int64) {
	a.NumItems = number
}

func (a Paginate) GetLimit() int {
	if a.Limit <= 0 {
		return DefaultPageSize
	}
	return a.Limit
}

// TotalPages is never less than one, so an empty result still has a first page.
func (a Paginate) TotalPages() int {
	pages := int(math.Ceil(float64(a.NumItems) / float64(a.GetLimit())))
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp moves Page to the nearest valid page for the current NumItems.
func (a *Paginate) Clamp() {
	if a.Page < 1 {
		a.Page = 1
	}
	if last := a.TotalPages(); a.Page > last {
		a.Page = last
	}
}

func (a Paginate) Offset() int {
	return (a.Page - 1) * a.GetLimit()
}

// ParsePage reads the ?page= value; anything that is not an integer means page 1.
// Integers too large for int saturate so Clamp still lands on the nearest page.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return page
	}
	if err != nil {
		return 1
	}
	return page
}

// Pagination holds the data for a single page along with all pagination metadata.
//
// NextPage and PreviousPage are nil when there isn't a next or previous page.
type Pagination[T any] struct {
	Data         []T   `json:"data"`
	Page         int   `json:"page"`
	Total        int64 `json:"total"`
	PageSize     int   `json:"page_size"`
	TotalPages   int   `json:"total_pages"`
	NextPage     *int  `json:"next_page,omitempty"`
	PreviousPage *int  `json:"previous_page,omitempty"`
}

func (p Pagination[T]) HasNext() bool {
	return p.NextPage != nil
}

func (p Pagination[T]) HasPrevious() bool {
	return p.PreviousPage != nil
}

func (p Pagination[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func MakePagination[T any](data []T, paginate Paginate) *Pagination[T] {
	pagination := Pagination[T]{
		Data:       data,
		Page:       paginate.Page,
		Total:      paginate.NumItems,
		PageSize:   paginate.GetLimit(),
		TotalPages: paginate.TotalPages(),
	}

	if pagination.Page < pagination.TotalPages {
		p := pagination.Page + 1
		pagination.NextPage = &p
	}

	if pagination.Page > 1 && pagination.Page <= pagination.TotalPages {
		p := pagination.Page - 1
		pagination.PreviousPage = &p
	}

	return &pagination
}
