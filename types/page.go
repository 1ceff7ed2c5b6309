/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"strings"
)

const defaultPageSize = 10

// Order sorts by one property (a column name) in one direction.
type Order struct {
	Property  string
	Direction Direction
}

func OrderBy(property string, direction Direction) Order {
	return Order{Property: property, Direction: direction}
}

// String renders the order as "property DIRECTION".
func (o Order) String() string {
	return fmt.Sprintf("%s %s", o.Property, o.Direction)
}

// Sort is an ordered list of Orders; earlier orders take precedence.
type Sort []Order

// SortBy sorts every property in the same direction.
func SortBy(direction Direction, properties ...string) Sort {
	sort := make(Sort, 0, len(properties))
	for _, property := range properties {
		sort = append(sort, OrderBy(property, direction))
	}
	return sort
}

// Unsorted returns an empty Sort.
func Unsorted() Sort {
	return Sort{}
}

func (s Sort) IsSorted() bool {
	return len(s) > 0
}

// And appends other after the receiver's orders.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

func (s Sort) String() string {
	if !s.IsSorted() {
		return "UNSORTED"
	}
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

// PageRequest describes a zero-based page window and its ordering.
type PageRequest struct {
	page     int
	pageSize int
	sort     Sort
}

// NewPageRequest constructs a PageRequest. A negative page is treated as the
// first page and a size below one as the default size.
func NewPageRequest(page int, pageSize int, sort Sort) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, sort: sort}
}

// PageRequestOf sorts properties in one direction.
func PageRequestOf(page int, pageSize int, direction Direction, properties ...string) *PageRequest {
	return NewPageRequest(page, pageSize, SortBy(direction, properties...))
}

// NewDefaultPageRequest constructs an unsorted PageRequest.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, Unsorted())
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = defaultPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 0 {
		p.page = 0
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return p.GetPage() * p.GetPageSize()
}

func (p *PageRequest) GetSort() Sort {
	return p.sort
}

// Next returns the request for the following page.
func (p *PageRequest) Next() *PageRequest {
	return NewPageRequest(p.GetPage()+1, p.GetPageSize(), p.sort)
}

// Previous returns the request for the preceding page, or the first page.
func (p *PageRequest) Previous() *PageRequest {
	if p.GetPage() == 0 {
		return p
	}
	return NewPageRequest(p.GetPage()-1, p.GetPageSize(), p.sort)
}

// Slice is a window of results that only knows whether another window
// follows; building one never requires counting rows.
type Slice[T any] struct {
	Content []*T
	Number  int
	Size    int
	Sort    Sort
	hasNext bool
}

// NewSlice builds a slice for request. Content must already be trimmed to
// the page size.
func NewSlice[T any](content []*T, request *PageRequest, hasNext bool) *Slice[T] {
	if content == nil {
		content = make([]*T, 0)
	}
	return &Slice[T]{
		Content: content,
		Number:  request.GetPage(),
		Size:    request.GetPageSize(),
		Sort:    request.GetSort(),
		hasNext: hasNext,
	}
}

func (s *Slice[T]) HasNext() bool {
	return s.hasNext
}

func (s *Slice[T]) HasPrevious() bool {
	return s.Number > 0
}

func (s *Slice[T]) IsFirst() bool {
	return !s.HasPrevious()
}

func (s *Slice[T]) IsLast() bool {
	return !s.HasNext()
}

func (s *Slice[T]) NumberOfElements() int {
	return len(s.Content)
}

func (s *Slice[T]) HasContent() bool {
	return len(s.Content) > 0
}

// NextPageRequest returns nil on the last window.
func (s *Slice[T]) NextPageRequest() *PageRequest {
	if !s.HasNext() {
		return nil
	}
	return NewPageRequest(s.Number+1, s.Size, s.Sort)
}

// Page is a Slice that also carries the total row count.
type Page[T any] struct {
	Slice[T]
	TotalElements int
}

func NewPage[T any](content []*T, request *PageRequest, total int) *Page[T] {
	page := &Page[T]{TotalElements: total}
	page.Slice = *NewSlice(content, request, false)
	page.hasNext = page.Number+1 < page.TotalPages()
	return page
}

// TotalPages is the number of pages of Size needed for TotalElements.
func (p *Page[T]) TotalPages() int {
	if p.Size < 1 {
		return 1
	}
	return (p.TotalElements + p.Size - 1) / p.Size
}

// MapSlice converts the content and keeps the window metadata.
func MapSlice[T any, R any](s *Slice[T], fn func(*T) *R) *Slice[R] {
	content := make([]*R, len(s.Content))
	for i, item := range s.Content {
		content[i] = fn(item)
	}
	return &Slice[R]{Content: content, Number: s.Number, Size: s.Size, Sort: s.Sort, hasNext: s.hasNext}
}

// MapPage converts the content and keeps the totals.
func MapPage[T any, R any](p *Page[T], fn func(*T) *R) *Page[R] {
	return &Page[R]{Slice: *MapSlice(&p.Slice, fn), TotalElements: p.TotalElements}
}
