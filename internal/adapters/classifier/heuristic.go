package classifier

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Heuristic is the concrete DocumentClassifier used when no OCR/AI vendor
// is configured (spec's Non-goals explicitly exclude shipping real OCR/AI
// model internals). It treats raw as UTF-8 text and extracts fields with
// label-anchored regexes, which is enough to drive the Rules Engine against
// documents produced by the upload flow's own test fixtures.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

var (
	containerRe  = regexp.MustCompile(`(?i)container\s*(?:no\.?|number)?\s*[:#]?\s*([A-Z]{4}[0-9]{7})`)
	bolRe        = regexp.MustCompile(`(?i)b/?l\s*(?:no\.?|number)?\s*[:#]?\s*([A-Za-z0-9-]+)`)
	shipperRe    = regexp.MustCompile(`(?i)shipper\s*[:#]?\s*([^\n\r]+)`)
	consigneeRe  = regexp.MustCompile(`(?i)consignee\s*[:#]?\s*([^\n\r]+)`)
	vesselRe     = regexp.MustCompile(`(?i)vessel\s*[:#]?\s*([^\n\r]+)`)
	voyageRe     = regexp.MustCompile(`(?i)voyage\s*(?:no\.?)?\s*[:#]?\s*([A-Za-z0-9-]+)`)
	polRe        = regexp.MustCompile(`(?i)port of loading\s*[:#]?\s*([A-Z]{5})`)
	podRe        = regexp.MustCompile(`(?i)port of discharge\s*[:#]?\s*([A-Z]{5})`)
	referenceRe  = regexp.MustCompile(`(?i)reference\s*(?:no\.?|number)?\s*[:#]?\s*([A-Za-z0-9-]+)`)
	issuingRe    = regexp.MustCompile(`(?i)issued by\s*[:#]?\s*([^\n\r]+)`)
	netWeightRe  = regexp.MustCompile(`(?i)net weight\s*[:#]?\s*([0-9.,]+)\s*kg`)
	hsCodeRe     = regexp.MustCompile(`(?i)hs\s*code\s*[:#]?\s*([0-9.]+)`)
	descriptionRe = regexp.MustCompile(`(?i)description\s*[:#]?\s*([^\n\r]+)`)
)

var documentTypeKeywords = []struct {
	docType  string
	keywords []string
}{
	{"bill_of_lading", []string{"bill of lading", "b/l no"}},
	{"commercial_invoice", []string{"commercial invoice"}},
	{"packing_list", []string{"packing list"}},
	{"certificate_of_origin", []string{"certificate of origin"}},
	{"phytosanitary_certificate", []string{"phytosanitary"}},
	{"veterinary_certificate", []string{"veterinary certificate"}},
	{"sanitary_certificate", []string{"sanitary certificate"}},
	{"insurance_certificate", []string{"insurance certificate"}},
	{"eudr_due_diligence_statement", []string{"due diligence statement", "eudr"}},
}

func (h *Heuristic) Classify(ctx context.Context, raw []byte, mime string) (ClassifiedDocument, error) {
	text := string(bytes.ToValidUTF8(raw, []byte{}))
	lower := strings.ToLower(text)

	out := ClassifiedDocument{
		DocumentType: "unclassified",
		Confidence:   0.3,
		RawFields:    map[string]string{},
	}
	for _, candidate := range documentTypeKeywords {
		for _, kw := range candidate.keywords {
			if strings.Contains(lower, kw) {
				out.DocumentType = candidate.docType
				out.Confidence = 0.7
				break
			}
		}
		if out.Confidence == 0.7 {
			break
		}
	}

	out.Shipper = firstMatch(shipperRe, text)
	out.Consignee = firstMatch(consigneeRe, text)
	out.BOLNumber = firstMatch(bolRe, text)
	out.VesselName = firstMatch(vesselRe, text)
	out.VoyageNo = firstMatch(voyageRe, text)
	out.POLCode = strings.ToUpper(firstMatch(polRe, text))
	out.PODCode = strings.ToUpper(firstMatch(podRe, text))

	if cn := firstMatch(containerRe, text); cn != "" {
		out.Containers = append(out.Containers, Container{Number: strings.ToUpper(cn)})
	}

	if ref := firstMatch(referenceRe, text); ref != "" {
		out.RawFields["reference_number"] = ref
	}
	if issuer := firstMatch(issuingRe, text); issuer != "" {
		out.RawFields["issuing_authority"] = issuer
	}

	desc := firstMatch(descriptionRe, text)
	hsCode := firstMatch(hsCodeRe, text)
	netWeight := parseFloat(firstMatch(netWeightRe, text))
	if desc != "" || hsCode != "" || netWeight > 0 {
		out.CargoItems = append(out.CargoItems, CargoItem{Description: desc, HSCode: hsCode, QuantityNetKg: netWeight})
	}

	return out, nil
}

func firstMatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseFloat(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
