package policydoc

import (
	"context"
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/anadolubroker/sigorta-backend/pkg/db/models"
)

// PolicySnapshot is the flattened view of an issued policy that the
// rendered document shows.
type PolicySnapshot struct {
	PolicyNumber string
	CustomerName string
	CategoryName string
	StartDate    time.Time
	EndDate      time.Time
	TotalPremium decimal.Decimal
	Status       string
	IssuedAt     time.Time
}

// SnapshotFromPolicy builds the render input from a policy row with
// preloaded associations.
func SnapshotFromPolicy(policy models.Policy) PolicySnapshot {
	snapshot := PolicySnapshot{
		PolicyNumber: policy.PolicyNumber,
		StartDate:    policy.StartDate,
		EndDate:      policy.EndDate,
		TotalPremium: policy.TotalPremium,
		Status:       policy.Status.String(),
		IssuedAt:     policy.CreatedAt,
	}
	if policy.Customer != nil {
		snapshot.CustomerName = policy.Customer.FullName
	}
	if policy.InsuranceType != nil {
		snapshot.CategoryName = policy.InsuranceType.Name
	}
	return snapshot
}

// Renderer produces the policy certificate PDF.
type Renderer struct{}

// NewRenderer builds a maroto-backed policy document renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the certificate and returns the PDF bytes.
func (r *Renderer) Render(ctx context.Context, snapshot PolicySnapshot) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(30,
		text.NewCol(12, "Insurance Policy Certificate", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Policy number: "+snapshot.PolicyNumber, props.Text{Top: 0}),
			text.New("Issued: "+snapshot.IssuedAt.Format("2006-01-02"), props.Text{Top: 5}),
			text.New("Status: "+snapshot.Status, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Insured", props.Text{Style: fontstyle.Bold}),
			text.New(snapshot.CustomerName, props.Text{Top: 5}),
			text.New("Category: "+snapshot.CategoryName, props.Text{Top: 10}),
		),
	)

	m.AddRow(10,
		text.NewCol(4, "Coverage start", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Coverage end", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Total premium", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(4, snapshot.StartDate.Format("2006-01-02"), props.Text{Size: 9}),
		text.NewCol(4, snapshot.EndDate.Format("2006-01-02"), props.Text{Size: 9}),
		text.NewCol(4, snapshot.TotalPremium.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(20,
		text.NewCol(12, "This certificate confirms the coverage stated above.", props.Text{
			Size: 8,
			Top:  10,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render policy document: %w", err)
	}
	return doc.GetBytes(), nil
}
