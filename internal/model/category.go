package model

// Category is a named, colored classification applied to tasks. The UI
// treats the list as read-only: it is fetched once per session and there is
// no create/update/delete path.
type Category struct {
	ID    int    `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex"` // stable key joined from Task.Category
	Label string `json:"label"`
	Color string `json:"color"`
}

// LabelFor resolves a category name to its display label. A dangling
// reference resolves to the empty string and is rendered as "unknown" by
// callers that need a fallback.
func LabelFor(categories []Category, name string) string {
	for _, c := range categories {
		if c.Name == name {
			return c.Label
		}
	}
	return ""
}
