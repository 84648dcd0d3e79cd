package service

import (
	"ragtime/web/entity"

	"gorm.io/gorm"
)

// paginate resolves one page of an ordered collection: items, total count
// and prev/next indicators. Pages are 1-indexed; a page below 1 or past the
// end yields an empty item list rather than an error.
func paginate(query *gorm.DB, order string, dest any, page, perPage int) (*entity.Page, error) {
	// separate sessions keep the count finisher from polluting the find
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	p := &entity.Page{
		Items:   dest,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
	if page >= 1 {
		err := query.Order(order).
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(dest).Error
		if err != nil {
			return nil, err
		}
		p.Items = dest
	}

	last := lastPage(total, perPage)
	p.HasPrev = page > 1 && page-1 <= last
	p.HasNext = page >= 1 && page < last
	return p, nil
}

// lastPage computes ceil(total/perPage), used to resolve page=-1 requests
// onto the final page. An empty collection still has one (empty) page.
func lastPage(total int64, perPage int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
