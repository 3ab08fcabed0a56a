package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hornHoofBOL() *DocumentFields {
	return &DocumentFields{
		DocumentType:     "bill_of_lading",
		ShipperName:      "VIBOTAJ Global",
		ConsigneeName:    "HAGES GmbH",
		BOLNumber:        "APU058043",
		Containers:       []string{"MSCU1234567"},
		CargoLines:       []string{"horn and hoof meal, bulk"},
		POLCode:          "NGAPP",
		PODCode:          "DEHAM",
		Vessel:           "MSC ISABELLA",
		Voyage:           "221W",
		ParserConfidence: 0.92,
	}
}

// TestEvaluate_S1_HornHoofHappyPath mirrors spec scenario S1.
func TestEvaluate_S1_HornHoofHappyPath(t *testing.T) {
	in := Input{
		Shipment:       ShipmentFields{ProductType: "horn_hoof", HSCode: "0506.90"},
		BOL:            hornHoofBOL(),
		EUDRApplicable: false,
	}
	out := Evaluate(in)
	require.Equal(t, DecisionApprove, out.Decision)
	for _, r := range out.Results {
		assert.NotContains(t, r.RuleID, "EUDR-")
	}
}

// TestEvaluate_S2_PlaceholderShipperRejects mirrors spec scenario S2.
func TestEvaluate_S2_PlaceholderShipperRejects(t *testing.T) {
	bol := hornHoofBOL()
	bol.ShipperName = "Unknown Shipper"
	in := Input{
		Shipment: ShipmentFields{ProductType: "horn_hoof", HSCode: "0506.90"},
		BOL:      bol,
	}
	out := Evaluate(in)
	assert.Equal(t, DecisionReject, out.Decision)

	var bol001 Result
	for _, r := range out.Results {
		if r.RuleID == "BOL-001" {
			bol001 = r
		}
	}
	assert.False(t, bol001.Passed)
	assert.Equal(t, SeverityError, bol001.Severity)
}

// TestEvaluate_S4_CocoaEUDRIncompleteThenComplete mirrors spec scenario S4.
func TestEvaluate_S4_CocoaEUDRIncompleteThenComplete(t *testing.T) {
	in := Input{
		Shipment:       ShipmentFields{ProductType: "eudr_commodity", HSCode: "1801.00"},
		BOL:            hornHoofBOL(),
		EUDRApplicable: true,
		Origin:         nil,
	}
	out := Evaluate(in)
	assert.Equal(t, DecisionReject, out.Decision)

	in.Origin = &OriginFields{
		Lat: 6.5244, Lng: 3.3792, HasCoordinates: true,
		ProductionStartDate: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), HasProductionStartDate: true,
		DeforestationFreeStatement: "attested",
		CountryRiskClassification:  "standard",
	}
	out = Evaluate(in)
	assert.Equal(t, DecisionApprove, out.Decision)
}

func TestEvaluate_DeterministicOrderAndResults(t *testing.T) {
	in := Input{Shipment: ShipmentFields{ProductType: "horn_hoof", HSCode: "0506.90"}, BOL: hornHoofBOL()}
	first := Evaluate(in)
	second := Evaluate(in)
	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].RuleID, second.Results[i].RuleID)
		assert.Equal(t, first.Results[i].Passed, second.Results[i].Passed)
	}
	for i := 1; i < len(first.Results); i++ {
		assert.LessOrEqual(t, first.Results[i-1].RuleID, first.Results[i].RuleID)
	}
}

func TestEvaluate_OverrideSuppressesErrorFromAggregation(t *testing.T) {
	bol := hornHoofBOL()
	bol.BOLNumber = "UNKNOWN"
	in := Input{
		Shipment:  ShipmentFields{ProductType: "horn_hoof", HSCode: "0506.90"},
		BOL:       bol,
		Overrides: []Override{{RuleID: "BOL-004", Field: "bol_number", Reason: "manual confirmation from carrier"}},
	}
	out := Evaluate(in)
	assert.Equal(t, DecisionApprove, out.Decision)

	var bol004 Result
	for _, r := range out.Results {
		if r.RuleID == "BOL-004" {
			bol004 = r
		}
	}
	assert.True(t, bol004.Overridden)
	assert.False(t, bol004.Passed)
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("TBD"))
	assert.True(t, IsPlaceholder(""))
	assert.True(t, IsPlaceholder("ABC-CNT-001"))
	assert.False(t, IsPlaceholder("VIBOTAJ Global"))
}

func TestExtractUNLOCODE(t *testing.T) {
	assert.Equal(t, "NGAPP", ExtractUNLOCODE("Port: ngapp (Apapa)"))
	assert.Equal(t, "", ExtractUNLOCODE("no code here"))
}
