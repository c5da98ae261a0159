package robots

import "github.com/gosimple/slug"

// slugify transliterates the input to ASCII, lowercases it and collapses every run of other characters
// into a single dash. Leading and trailing dashes and underscores are dropped.
func slugify(s string) string {
	return slug.Make(s)
}
