// Package recipient resolves extracted employees to the payees registered on
// the banking API.
package recipient

import (
	"errors"
	"sort"
	"strings"

	"fjacquet/budgea-salary/internal/models"
	"fjacquet/budgea-salary/internal/payslip"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrNotFound is returned by Match when no allowed recipient matches.
var ErrNotFound = errors.New("no matching recipient")

// Filter keeps the recipients whose category is in allowed, in input order.
func Filter(recipients []models.Recipient, allowed []string) []models.Recipient {
	ok := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		ok[c] = true
	}

	var filtered []models.Recipient
	for _, r := range recipients {
		if ok[r.Category] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Match returns the recipient an employee's salary should be sent to.
//
// Only recipients in an allowed category are considered. When the employee
// has an IBAN the first recipient with the same IBAN wins; otherwise the first
// recipient whose label contains any token of the name, ignoring case.
func Match(e models.Employee, recipients []models.Recipient, allowed []string) (models.Recipient, error) {
	candidates := Filter(recipients, allowed)

	if e.HasIBAN() {
		iban := payslip.NormalizeIBAN(e.IBAN)
		for _, r := range candidates {
			if payslip.NormalizeIBAN(r.IBAN) == iban {
				return r, nil
			}
		}
		return models.Recipient{}, ErrNotFound
	}

	tokens := e.NameTokens()
	for _, r := range candidates {
		label := strings.ToLower(r.Label)
		for _, token := range tokens {
			if strings.Contains(label, strings.ToLower(token)) {
				return r, nil
			}
		}
	}
	return models.Recipient{}, ErrNotFound
}

// Suggest returns up to n allowed recipients whose labels fuzzily contain a
// token of the employee's name, closest first. Suggestions are for display;
// they are never used to pick a recipient.
func Suggest(e models.Employee, recipients []models.Recipient, allowed []string, n int) []models.Recipient {
	candidates := Filter(recipients, allowed)
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	labels := make([]string, len(candidates))
	for i, r := range candidates {
		labels[i] = r.Label
	}

	best := make(map[int]int)
	for _, token := range e.NameTokens() {
		for _, rank := range fuzzy.RankFindNormalizedFold(token, labels) {
			if d, seen := best[rank.OriginalIndex]; !seen || rank.Distance < d {
				best[rank.OriginalIndex] = rank.Distance
			}
		}
	}

	indexes := make([]int, 0, len(best))
	for i := range best {
		indexes = append(indexes, i)
	}
	sort.Slice(indexes, func(a, b int) bool {
		da, db := best[indexes[a]], best[indexes[b]]
		if da != db {
			return da < db
		}
		return indexes[a] < indexes[b]
	})

	if len(indexes) > n {
		indexes = indexes[:n]
	}
	suggestions := make([]models.Recipient, len(indexes))
	for i, idx := range indexes {
		suggestions[i] = candidates[idx]
	}
	return suggestions
}
