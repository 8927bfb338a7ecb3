package model

import "github.com/google/uuid"

type Category struct {
	Entity
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

func (Category) TableName() string {
	return "categories"
}
