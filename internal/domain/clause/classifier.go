package clause

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// Category is a keyword-derived clause category used to organise the
// dashboard. It is never sent back to the backend.
type Category string

const (
	CategoryTermination          Category = "termination"
	CategoryPayment              Category = "payment"
	CategoryLiability            Category = "liability"
	CategoryConfidentiality      Category = "confidentiality"
	CategoryArbitration          Category = "arbitration"
	CategoryIntellectualProperty Category = "intellectual_property"
	CategoryWarranty             Category = "warranty"
	CategoryGeneral              Category = "general"
)

// CategoryInfo is the display metadata of a category.
type CategoryInfo struct {
	ID          Category `json:"id"`
	Icon        string   `json:"icon"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
}

type categoryRule struct {
	info     CategoryInfo
	keywords []string
}

// categoryTable is evaluated in order; the first category with a matching
// keyword wins.
var categoryTable = []categoryRule{
	{
		info:     CategoryInfo{ID: CategoryTermination, Icon: "🔴", Label: "Termination", Description: "Contract ending conditions"},
		keywords: []string{"terminate", "termination", "cancel", "cancellation", "end", "ending", "expiration", "expire", "dissolution"},
	},
	{
		info:     CategoryInfo{ID: CategoryPayment, Icon: "💰", Label: "Payment", Description: "Financial obligations"},
		keywords: []string{"payment", "pay", "fee", "fees", "cost", "costs", "price", "pricing", "invoice", "billing", "compensation", "remuneration"},
	},
	{
		info:     CategoryInfo{ID: CategoryLiability, Icon: "⚖️", Label: "Liability", Description: "Risk and responsibility"},
		keywords: []string{"liability", "liable", "indemnify", "indemnification", "damages", "loss", "losses", "harm", "injury", "negligence"},
	},
	{
		info:     CategoryInfo{ID: CategoryConfidentiality, Icon: "🔒", Label: "Confidentiality", Description: "Information protection"},
		keywords: []string{"confidential", "confidentiality", "proprietary", "secret", "non-disclosure", "nda", "privacy", "private"},
	},
	{
		info:     CategoryInfo{ID: CategoryArbitration, Icon: "📋", Label: "Arbitration", Description: "Dispute resolution"},
		keywords: []string{"arbitration", "arbitrate", "dispute", "disputes", "mediation", "court", "litigation", "jurisdiction", "governing law"},
	},
	{
		info:     CategoryInfo{ID: CategoryIntellectualProperty, Icon: "💡", Label: "Intellectual Property", Description: "IP rights and ownership"},
		keywords: []string{"intellectual property", "ip", "patent", "trademark", "copyright", "ownership", "license"},
	},
	{
		info:     CategoryInfo{ID: CategoryWarranty, Icon: "✓", Label: "Warranty", Description: "Guarantees and representations"},
		keywords: []string{"warranty", "warranties", "guarantee", "representation", "assurance"},
	},
}

var generalInfo = CategoryInfo{ID: CategoryGeneral, Icon: "📄", Label: "General", Description: "Other clauses"}

// foldText prepares free text for keyword matching. NFKC folds ligatures and
// full-width forms that PDF extraction tends to produce.
func foldText(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Classify returns the first category in table order whose keywords occur in
// text, or CategoryGeneral.
func Classify(text string) Category {
	if text == "" {
		return CategoryGeneral
	}
	folded := foldText(text)
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(folded, kw) {
				return rule.info.ID
			}
		}
	}
	return CategoryGeneral
}

// Info returns the display metadata of a category. Unrecognised ids get an
// "Unknown" placeholder.
func Info(c Category) CategoryInfo {
	if c == CategoryGeneral {
		return generalInfo
	}
	for _, rule := range categoryTable {
		if rule.info.ID == c {
			return rule.info
		}
	}
	return CategoryInfo{ID: c, Icon: "📄", Label: "Unknown", Description: "Uncategorized"}
}

// AllCategories lists every category in table order, general last.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryTable)+1)
	for _, rule := range categoryTable {
		out = append(out, rule.info.ID)
	}
	return append(out, CategoryGeneral)
}

// GroupedClause is a clause tagged with its category and its position in the
// source list.
type GroupedClause struct {
	Clause        contract.ClauseResult `json:"clause"`
	Category      Category              `json:"category"`
	OriginalIndex int                   `json:"original_index"`
}

// GroupByCategory partitions clauses by category. Each group keeps the order
// of the input.
func GroupByCategory(clauses []contract.ClauseResult) map[Category][]GroupedClause {
	grouped := make(map[Category][]GroupedClause)
	for i, c := range clauses {
		cat := Classify(c.Text)
		grouped[cat] = append(grouped[cat], GroupedClause{Clause: c, Category: cat, OriginalIndex: i})
	}
	return grouped
}
