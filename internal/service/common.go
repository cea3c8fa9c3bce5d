package service

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) limit() int {
	if p.Limit <= 0 {
		return defaultPageSize
	}
	if p.Limit > maxPageSize {
		return maxPageSize
	}
	return p.Limit
}

// Normalized applies the defaults List uses.
func (p Page) Normalized() Page {
	return Page{Page: max(p.Page, 1), Limit: p.limit()}
}

func (p Page) offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.limit()
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect supports row locks.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Clock is swapped in tests.
type Clock func() time.Time

func defaultClock() time.Time { return time.Now() }
