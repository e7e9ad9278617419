package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/turtacn/ClauseLens/pkg/types/contract"
)

// MinimalPDF is enough of a PDF for content sniffing and upload paths. It
// has no pages.
var MinimalPDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

// SampleDocument returns a two-clause analysis: a low-risk termination
// clause on page 0 and a high-risk liability clause on page 1.
func SampleDocument() *contract.DocumentResult {
	return &contract.DocumentResult{
		TotalClauses: 2,
		Results: []contract.ClauseResult{
			{
				ClauseIndex: 0,
				Text:        "Either party may terminate this Agreement upon thirty days notice.",
				Risk: &contract.RiskDetail{
					RiskLevel:   contract.TextLevel("low"),
					Explanation: "Standard mutual termination.",
				},
				Blocks: []contract.Block{{Page: 0, BBox: []float64{72, 100, 540, 140}}},
			},
			{
				ClauseIndex: 1,
				Text:        "The Supplier's liability shall be unlimited for any indemnification claim.",
				Risk: &contract.RiskDetail{
					RiskLevel:        contract.TextLevel("high"),
					Issue:            "Uncapped liability",
					Explanation:      "Unlimited liability is a significant risk and lacks a cap.",
					SuggestedRewrite: "Liability is capped at the fees paid in the prior twelve months.",
				},
				Blocks: []contract.Block{{Page: 1, BBox: []float64{72, 200, 540, 260}}},
			},
		},
	}
}

// WriteTempFile writes data under a per-test directory and returns the path.
func WriteTempFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
