package models

import (
	"github.com/jinzhu/gorm"
)

// IssueComment rows are append-only; insertion order is the id order.
type IssueComment struct {
	gorm.Model

	IssueID  uint
	AuthorID uint
	Content  string
}
