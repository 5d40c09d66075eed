package viewmodel

// OpenGraph carries the meta tags for shareable pages such as menu dishes.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	URL         string
}

// Option is one entry of a select, radio or checkbox group.
type Option struct {
	Value    string
	Label    string
	Selected bool
}
