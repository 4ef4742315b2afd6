// Shelfwise - Library Analytics and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Query template names.
const (
	TemplateMostBorrowed   = "most_borrowed"
	TemplateOverdue        = "overdue"
	TemplateAvailableBooks = "available_books"
)

const defaultTopN = 10

// maxTopN bounds the LIMIT of the most-borrowed template.
const maxTopN = 1000

const unmatchedMessage = "Could not parse query. Please try: 'top 5 most borrowed books', 'overdue books', 'available books'"

var firstNumber = regexp.MustCompile(`\d+`)

const mostBorrowedSQL = `SELECT b.title, b.borrow_count, c.name as category
FROM books b
JOIN categories c ON b.category_id = c.id
ORDER BY b.borrow_count DESC
LIMIT %d`

const overdueSQL = `SELECT u.email, b.title, br.due_date,
       CURRENT_DATE - br.due_date as days_overdue
FROM borrowings br
JOIN users u ON br.user_id = u.id
JOIN books b ON br.book_id = b.id
WHERE br.status = 'overdue'
ORDER BY days_overdue DESC`

const availableBooksSQL = `SELECT b.title, b.available_copies, c.name as category
FROM books b
JOIN categories c ON b.category_id = c.id
WHERE b.available_copies > 0
ORDER BY b.title`

// QueryTemplate is the analytic SQL matched to a natural-language request.
// SQL is nil when nothing matched. The SQL is returned for display and is
// never executed by this service.
type QueryTemplate struct {
	Query    string  `json:"query"`
	Template string  `json:"template,omitempty"`
	SQL      *string `json:"sql"`
	Message  string  `json:"message"`
}

// MatchQueryTemplate maps a request such as "top 5 most borrowed books" to
// one of the canned analytic queries. Checks run in order: most borrowed or
// popular, overdue, then available books.
func MatchQueryTemplate(query string) *QueryTemplate {
	lower := strings.ToLower(query)
	out := &QueryTemplate{Query: query}

	var sql string
	switch {
	case strings.Contains(lower, "most borrowed") || strings.Contains(lower, "popular"):
		out.Template = TemplateMostBorrowed
		sql = fmt.Sprintf(mostBorrowedSQL, topN(lower))
	case strings.Contains(lower, "overdue"):
		out.Template = TemplateOverdue
		sql = overdueSQL
	case strings.Contains(lower, "available") && strings.Contains(lower, "books"):
		out.Template = TemplateAvailableBooks
		sql = availableBooksSQL
	default:
		out.Message = unmatchedMessage
		return out
	}

	out.SQL = &sql
	out.Message = "SQL generated successfully"
	return out
}

// topN reads the first number in a "top N" request, defaulting to 10.
func topN(lower string) int {
	if !strings.Contains(lower, "top") {
		return defaultTopN
	}
	m := firstNumber.FindString(lower)
	if m == "" {
		return defaultTopN
	}
	n, err := strconv.Atoi(m)
	if err != nil || n < 1 {
		return defaultTopN
	}
	return min(n, maxTopN)
}
