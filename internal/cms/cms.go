// Copyright (c) 2026 Vitalink. All rights reserved.
// Author: dev@vitalink.health

// Package cms implements the content management system: curated articles
// with an explicit display ordering, store goods, the app logo, and the
// article categories. Admins author the content; members read it through the
// cached public routes.
package cms

import "time"

// Article is one editorial entry shown in the app's content tab.
//
// # Ordering
//
// ShowOrder is a dense 1-based rank maintained by the save and delete
// operations: moving or removing an article shifts its neighbors so the
// sequence never develops holes.
type Article struct {
	ID          int64     `json:"id"`
	AdminID     int64     `json:"-"`
	Banner      string    `json:"banner"`
	Caption     string    `json:"caption,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    int64     `json:"category"`
	ShowOrder   int       `json:"show_order"`
	CreateDate  time.Time `json:"create_date"`
	UpdateDate  time.Time `json:"update_date"`

	// Reaction totals, populated on reads.
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Good is one item in the in-app store.
type Good struct {
	ID          int64     `json:"id"`
	AdminID     int64     `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Price       float64   `json:"price"`
	Link        string    `json:"link"`
	CreateDate  time.Time `json:"create_date"`
	UpdateDate  time.Time `json:"update_date"`

	// Reaction totals, populated on reads.
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Category labels articles in the content tab.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}
