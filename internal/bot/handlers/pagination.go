package handlers

// itemsPerPage is the page size shared by the task, birthday and place
// listings.
const itemsPerPage = 10

// paginate clamps the requested page and returns the slice bounds for it
// along with the effective page and the total page count. Pages are
// 1-based; an empty list yields a single empty page.
func paginate(total, page int) (start, end, effectivePage, totalPages int) {
	totalPages = (total + itemsPerPage - 1) / itemsPerPage
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start = (page - 1) * itemsPerPage
	end = start + itemsPerPage
	if end > total {
		end = total
	}

	return start, end, page, totalPages
}
