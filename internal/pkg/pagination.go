package pkg

import (
	"regexp"
	"slices"
	"strings"

	"github.com/simp-lee/koiconsult/internal/domain"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	defaultSort     = "created_at:desc"
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// filterOps maps filter key suffixes to SQL comparison templates.
var filterOps = []struct {
	suffix string
	clause string
	like   bool
}{
	{suffix: "__like", clause: " LIKE ?", like: true},
	{suffix: "__gte", clause: " >= ?"},
	{suffix: "__lte", clause: " <= ?"},
}

// PageBody is the paging header every list request body starts with.
type PageBody struct {
	PageIndex int `json:"pageIndex" binding:"gte=0"`
	PageSize  int `json:"pageSize" binding:"gte=0,max=100"`
}

// NewPageRequest normalizes a body-supplied page header into a PageRequest.
// A zero index becomes 1, a zero size becomes DefaultPageSize.
func NewPageRequest(body PageBody, sort string, filter map[string]string) domain.PageRequest {
	page := body.PageIndex
	if page < 1 {
		page = 1
	}
	size := body.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if sort == "" {
		sort = defaultSort
	}
	if filter == nil {
		filter = make(map[string]string)
	}
	return domain.PageRequest{
		Page:     page,
		PageSize: size,
		Sort:     sort,
		Filter:   filter,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the page request.
// Only field names present in the allowed list are accepted; others are silently ignored.
// Multiple keys may be joined with commas ("image_count:desc,created_at:asc").
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, part := range strings.Split(req.Sort, ",") {
			field, direction, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			field = strings.TrimSpace(field)
			direction = strings.TrimSpace(strings.ToLower(direction))

			if direction != "asc" && direction != "desc" {
				continue
			}
			if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
				continue
			}
			db = db.Order(field + " " + direction)
		}
		return db
	}
}

// Tiebreak orders by column after every key added by Sort. Scopes run at
// execution time, so a plain Order chained next to them would come first.
func Tiebreak(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

// Filter returns a GORM scope that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
// Keys ending with "__like" produce a LIKE '%value%' condition, "__gte" and
// "__lte" produce range bounds, and bare keys use exact match.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, clause, arg := key, " = ?", any(value)
			for _, op := range filterOps {
				if name, found := strings.CutSuffix(key, op.suffix); found {
					field, clause = name, op.clause
					if op.like {
						arg = "%" + value + "%"
					}
					break
				}
			}
			if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
				continue
			}
			db = db.Where(field+clause, arg)
		}
		return db
	}
}

// NewPage builds the paged response for items out of total matching rows.
// TotalPages is at least 1 so clients can always address page 1.
func NewPage[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	totalPages := 1
	if req.PageSize > 0 && total > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	if items == nil {
		items = []T{}
	}
	return &domain.PageResult[T]{
		PageIndex:       req.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		HasPreviousPage: req.Page > 1,
		HasNextPage:     req.Page < totalPages,
		Datas:           items,
	}
}

// MapPage converts the items of a page while keeping its metadata.
func MapPage[T, U any](page *domain.PageResult[T], fn func(T) U) *domain.PageResult[U] {
	out := make([]U, 0, len(page.Datas))
	for _, item := range page.Datas {
		out = append(out, fn(item))
	}
	return &domain.PageResult[U]{
		PageIndex:       page.PageIndex,
		TotalPages:      page.TotalPages,
		TotalItems:      page.TotalItems,
		HasPreviousPage: page.HasPreviousPage,
		HasNextPage:     page.HasNextPage,
		Datas:           out,
	}
}
