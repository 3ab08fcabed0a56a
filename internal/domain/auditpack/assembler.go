// Package auditpack implements the Audit Pack Assembler (C11): a
// deterministic ZIP archive of a shipment's documents, container tracking
// log and metadata (spec §4.9). It is a read-only consumer of every other
// module — it never mutates shipment, document, or tracking state.
package auditpack

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jung-kurt/gofpdf/v2"

	"github.com/arc-self/tracehub/internal/adapters/blobstore"
	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/repository/db"
)


// documentOrder is the fixed sequence required by spec §4.9; anything not
// listed here sorts after it, alphabetically by document type.
var documentOrder = []string{
	"bill_of_lading", "commercial_invoice", "packing_list", "certificate_of_origin",
	"phytosanitary_certificate", "veterinary_certificate", "sanitary_certificate",
	"insurance_certificate", "eudr_due_diligence_statement",
}

func orderRank(docType string) int {
	for i, t := range documentOrder {
		if t == docType {
			return i
		}
	}
	return len(documentOrder) + 1
}

// Assembler builds audit packs from already-persisted shipment state. It is
// the one consumer that needs a document's actual file bytes rather than its
// canonical_data projection — canonical_data is the Rules Engine's typed
// extraction, not a copy of the uploaded file.
type Assembler struct {
	querier db.Querier
	matrix  *compliance.Matrix
	blobs   blobstore.BlobStore
	bucket  string
}

func NewAssembler(q db.Querier, matrix *compliance.Matrix, blobs blobstore.BlobStore, bucket string) *Assembler {
	return &Assembler{querier: q, matrix: matrix, blobs: blobs, bucket: bucket}
}

type metadataDocument struct {
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
	Status       string `json:"status"`
	Version      int32  `json:"version"`
}

type metadata struct {
	ShipmentReference string             `json:"shipment_reference"`
	ProductType       string             `json:"product_type"`
	Status            string             `json:"status"`
	Documents         []metadataDocument `json:"documents"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Assemble produces {reference}-audit-pack.zip bytes. Given the same
// inputs the ZIP is reproducible modulo the index PDF's internal
// generation timestamp field, which `generatedAt` controls explicitly so
// callers can pin it for reproducibility tests.
func (a *Assembler) Assemble(ctx context.Context, shipmentID string, generatedAt time.Time) ([]byte, string, error) {
	parsed, err := uuid.Parse(shipmentID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid shipment id %q", apperr.ErrInvalidInput, shipmentID)
	}
	var id pgtype.UUID
	_ = id.Scan(parsed.String())

	sh, err := a.querier.GetShipment(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("%w: shipment", apperr.ErrNotFound)
	}
	docs, err := a.querier.ListDocumentsByShipment(ctx, sh.ID)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	events, err := a.querier.ListContainerEventsByShipment(ctx, sh.ID)
	if err != nil {
		return nil, "", fmt.Errorf("list container events: %w", err)
	}

	primaryDocs := primaryOnly(docs)
	sortDocuments(primaryDocs)

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	indexPDF, err := buildIndexPDF(sh, primaryDocs, events, generatedAt, a.matrixEUDRApplicable(sh.ProductType))
	if err != nil {
		return nil, "", fmt.Errorf("build index pdf: %w", err)
	}
	if err := writeZipEntry(zw, "00-SHIPMENT-INDEX.pdf", indexPDF); err != nil {
		return nil, "", err
	}

	for i, d := range primaryDocs {
		content, err := a.fetchDocumentBytes(ctx, d)
		if err != nil {
			return nil, "", fmt.Errorf("fetch document %s: %w", d.ID.String(), err)
		}
		entryName := fmt.Sprintf("%02d-%s%s", i+1, slug(d.DocumentType), extFor(d))
		if err := writeZipEntry(zw, entryName, content); err != nil {
			return nil, "", err
		}
	}

	trackingLog, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal tracking log: %w", err)
	}
	if err := writeZipEntry(zw, "container-tracking-log.json", trackingLog); err != nil {
		return nil, "", err
	}

	meta := metadata{
		ShipmentReference: sh.Reference, ProductType: sh.ProductType, Status: sh.Status, GeneratedAt: generatedAt,
	}
	for _, d := range primaryDocs {
		meta.Documents = append(meta.Documents, metadataDocument{
			DocumentType: d.DocumentType, FileName: d.FileName, Status: d.Status, Version: d.Version,
		})
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := writeZipEntry(zw, "metadata.json", metaJSON); err != nil {
		return nil, "", err
	}

	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("close zip writer: %w", err)
	}
	return buf.Bytes(), sh.Reference + "-audit-pack.zip", nil
}

// writeZipEntry zeroes the per-entry modified time so the archive bytes
// are reproducible across runs given identical inputs.
func writeZipEntry(zw *zip.Writer, name string, content []byte) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	hdr.Modified = time.Unix(0, 0).UTC()
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

func primaryOnly(docs []db.Document) []db.Document {
	var out []db.Document
	for _, d := range docs {
		if d.IsPrimary {
			out = append(out, d)
		}
	}
	return out
}

func sortDocuments(docs []db.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := orderRank(docs[i].DocumentType), orderRank(docs[j].DocumentType)
		if ri != rj {
			return ri < rj
		}
		return docs[i].DocumentType < docs[j].DocumentType
	})
}

func slug(docType string) string {
	return strings.ReplaceAll(docType, "_", "-")
}

// fetchDocumentBytes reads the uploaded file straight from blob storage.
// canonical_data never substitutes for it — it holds only the parser's
// typed field extraction, not a copy of the file.
func (a *Assembler) fetchDocumentBytes(ctx context.Context, d db.Document) ([]byte, error) {
	rc, err := a.blobs.Get(ctx, a.bucket, d.FilePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// extFor derives a zip entry suffix from the document's stored file name,
// falling back to .bin when none is recorded.
func extFor(d db.Document) string {
	if i := strings.LastIndexByte(d.FileName, '.'); i >= 0 {
		return d.FileName[i:]
	}
	return ".bin"
}

// matrixEUDRApplicable looks up applicability by product type alone (the
// shipment-level aggregate), falling back to false if the matrix has no
// policy row for it — the index PDF's EUDR section is informational, the
// authoritative per-product check runs in the Rules Engine.
func (a *Assembler) matrixEUDRApplicable(productType string) bool {
	policy, err := a.matrix.Lookup(productType, "")
	if err != nil {
		return false
	}
	return policy.EUDRApplicable
}

func buildIndexPDF(sh db.Shipment, docs []db.Document, events []db.ContainerEvent, generatedAt time.Time, eudrApplicable bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(sh.Reference+" audit pack", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Shipment "+sh.Reference, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Product type: %s", sh.ProductType), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Status: %s", sh.Status), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format(time.RFC3339)), "", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Document checklist", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, required := range documentOrder {
		mark := "[ missing ]"
		for _, d := range docs {
			if d.DocumentType == required {
				mark = "[ present ] " + d.Status
				break
			}
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("%-35s %s", required, mark), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Container events", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, ev := range events {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s  %s  %s", ev.EventTime.Time.UTC().Format(time.RFC3339), ev.EventStatus, ev.LocationCode), "", 1, "L", false, 0, "")
	}

	if eudrApplicable {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, "EUDR compliance statement", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, "This shipment's product type is subject to EU Deforestation Regulation due diligence. See the included EUDR Due Diligence Statement for geolocation and deforestation-free attestations.", "", "L", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
