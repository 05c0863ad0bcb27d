// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import "github.com/google/uuid"

// Key names one cached read.
type Key string

// CategoriesKey caches the category option list.
const CategoriesKey Key = "categories"

// CourseKey caches a single course.
func CourseKey(id uuid.UUID) Key {
	return Key("course:" + id.String())
}

// CourseListKey caches the courses owned by a user.
func CourseListKey(userID string) Key {
	return Key("courses:" + userID)
}
