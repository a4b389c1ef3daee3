package models

// PageBounds resolves a requested page number against a listing of total
// items. Anything out of range, zero and negative numbers included, lands
// on the last page. An empty listing still has one empty page.
func PageBounds(total, perPage, requested int) (number, numPages, offset int) {
	numPages = 1
	if total > 0 {
		numPages = (total + perPage - 1) / perPage
	}

	number = requested
	if number < 1 || number > numPages {
		number = numPages
	}

	return number, numPages, (number - 1) * perPage
}
